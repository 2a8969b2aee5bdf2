package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/delphi-cli/internal/output"
)

var typeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Replace a control's text by clicking it and typing",
	Long: `Click the control to focus it, select all, delete, and type the new text.
ASCII is typed key by key; other text is injected as Unicode.

This is the reliable path for DevExpress editors: a physical click runs the
VCL focus pipeline, which programmatic focus does not.`,
	Example: `  delphi-cli type --id TE_Username admin
  delphi-cli type --id TE_Password --text secret`,
	Args: cobra.MaximumNArgs(1),
	RunE: runType,
}

var setTextCmd = &cobra.Command{
	Use:   "settext [text]",
	Short: "Write a windowed control's text buffer directly (WM_SETTEXT)",
	Long: `Send WM_SETTEXT to a control with a native window handle.

Faster than type, but the owning toolkit is not notified: composite editors
(DevExpress) may keep their old internal value. Prefer type unless the control
is a plain Win32 edit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetText,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(setTextCmd)
	for _, c := range []*cobra.Command{typeCmd, setTextCmd} {
		addQueryFlags(c)
		c.Flags().String("text", "", "Text to enter (alternative to positional arg)")
		c.Flags().String("window", "", "Owning form title (default: foreground window)")
	}
}

// textArg returns the positional text or --text. An explicitly empty
// --text clears the control.
func textArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cmd.Flags().Changed("text") {
		return cmd.Flags().GetString("text")
	}
	return "", fmt.Errorf("specify --text or a positional text argument")
}

func runType(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}
	text, err := textArg(cmd, args)
	if err != nil {
		return err
	}
	window, _ := cmd.Flags().GetString("window")

	a := newApp()
	loc, err := a.locate(cmd.Context(), q, window)
	if err != nil {
		return err
	}
	if err := a.targeter.SetText(cmd.Context(), loc.Control, loc.Form, text); err != nil {
		return err
	}
	return output.Print(ActionResult{
		OK:     true,
		Action: "type",
		ID:     loc.Control.Name,
		Text:   text,
		Handle: loc.Control.Handle,
		Native: loc.Native,
	})
}

func runSetText(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}
	text, err := textArg(cmd, args)
	if err != nil {
		return err
	}
	window, _ := cmd.Flags().GetString("window")

	a := newApp()
	loc, err := a.locate(cmd.Context(), q, window)
	if err != nil {
		return err
	}
	if err := a.targeter.SetTextDirect(loc.Control, text); err != nil {
		return err
	}
	return output.Print(ActionResult{
		OK:     true,
		Action: "settext",
		ID:     loc.Control.Name,
		Text:   text,
		Handle: loc.Control.Handle,
		Native: loc.Native,
	})
}
