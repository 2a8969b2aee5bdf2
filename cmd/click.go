package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/output"
	"github.com/mj1618/delphi-cli/internal/target"
)

// ActionResult is the output of click, type and settext.
type ActionResult struct {
	OK     bool         `yaml:"ok"               json:"ok"`
	Action string       `yaml:"action"           json:"action"`
	ID     string       `yaml:"id,omitempty"     json:"id,omitempty"`
	Text   string       `yaml:"text,omitempty"   json:"text,omitempty"`
	Handle int          `yaml:"handle,omitempty" json:"handle,omitempty"`
	Point  *model.Point `yaml:"point,omitempty"  json:"point,omitempty"`
	Native bool         `yaml:"native,omitempty" json:"native,omitempty"`
}

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Click a control found by automation id or caption",
	Long: `Bring the owning form to the foreground and left-click a control.

Windowed controls are clicked where the OS says they are. Non-windowed
controls are placed from the form's client origin plus the bridge offset.
Without a bridge, --caption falls back to the form's native child windows.

--anchor right clicks near the right edge, which opens dropdown editors.`,
	Example: `  delphi-cli click --id Btn_Login
  delphi-cli click --id edType --anchor right
  delphi-cli click --caption OK --window "Confirm"`,
	RunE: runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	addQueryFlags(clickCmd)
	clickCmd.Flags().String("anchor", "center", "Click point: center, left, right, top, bottom")
	clickCmd.Flags().String("window", "", "Owning form title (default: foreground window)")
}

func runClick(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}
	anchorFlag, _ := cmd.Flags().GetString("anchor")
	anchor, err := target.ParseAnchor(anchorFlag)
	if err != nil {
		return err
	}
	window, _ := cmd.Flags().GetString("window")

	a := newApp()
	loc, err := a.locate(cmd.Context(), q, window)
	if err != nil {
		return err
	}
	pt, err := a.targeter.Click(cmd.Context(), loc.Control, loc.Form, anchor)
	if err != nil {
		return err
	}
	return output.Print(ActionResult{
		OK:     true,
		Action: "click",
		ID:     loc.Control.Name,
		Text:   loc.Control.Text,
		Handle: loc.Control.Handle,
		Point:  &pt,
		Native: loc.Native,
	})
}
