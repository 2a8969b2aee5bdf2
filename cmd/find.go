package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/output"
	"github.com/mj1618/delphi-cli/internal/target"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find controls by automation id and/or caption",
	Long: `Find controls by component Name (--id) and/or caption (--caption). Both are
exact matches; when both are given both must match.

By default only the active form is searched, because component names are only
unique within a form. --scope global lets the bridge search every form.`,
	Example: `  delphi-cli find --id Btn_Login
  delphi-cli find --caption OK --all
  delphi-cli find --id edName --scope global`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	addQueryFlags(findCmd)
	findCmd.Flags().Bool("all", false, "Return every match instead of the first")
}

// addQueryFlags registers the control lookup flags shared by find, click,
// type and settext.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "Component Name (automation id), e.g. Btn_Login")
	cmd.Flags().String("caption", "", "Caption text, e.g. OK")
	cmd.Flags().String("scope", "active-form", "Where to search: active-form, global")
}

func queryFromFlags(cmd *cobra.Command) (target.Query, error) {
	scopeFlag, _ := cmd.Flags().GetString("scope")
	scope, err := target.ParseScope(scopeFlag)
	if err != nil {
		return target.Query{}, err
	}
	q := target.Query{Scope: scope}
	q.AutoID, _ = cmd.Flags().GetString("id")
	q.Caption, _ = cmd.Flags().GetString("caption")
	if q.Empty() {
		return q, target.ErrEmptyQuery
	}
	return q, nil
}

func runFind(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}
	if all, _ := cmd.Flags().GetBool("all"); all {
		q.Policy = target.PolicyAll
	}

	c, err := newApp().bridge(cmd.Context())
	if err != nil {
		return err
	}
	controls, err := target.FindControls(cmd.Context(), c, q)
	if err != nil {
		return err
	}
	if controls == nil {
		controls = []model.Control{}
	}
	return output.Print(output.ControlsResult{TS: time.Now().Unix(), Count: len(controls), Controls: controls})
}
