package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/output"
	"github.com/mj1618/delphi-cli/internal/target"
)

// DialogsResult is the output of the dialogs command.
type DialogsResult struct {
	Count   int                  `yaml:"count"             json:"count"`
	Dialogs []model.NativeDialog `yaml:"dialogs"           json:"dialogs"`
	Warning string               `yaml:"warning,omitempty" json:"warning,omitempty"`
}

var dialogsCmd = &cobra.Command{
	Use:   "dialogs",
	Short: "List native Win32 dialogs blocking the foreground application",
	Long: `List visible #32770 dialogs (MessageBox, TaskDialog, Open/Save) owned by the
foreground window's process, with their buttons, edits and text. The bridge
cannot see these; dismiss them before driving the VCL forms.`,
	RunE: runDialogs,
}

func init() {
	rootCmd.AddCommand(dialogsCmd)
}

func runDialogs(cmd *cobra.Command, args []string) error {
	dialogs, err := newApp().targeter.DetectNativeDialogs()
	if err != nil {
		return err
	}
	res := DialogsResult{Count: len(dialogs), Dialogs: dialogs}
	if res.Dialogs == nil {
		res.Dialogs = []model.NativeDialog{}
	}
	if len(dialogs) > 0 {
		res.Warning = target.DialogWarning
	}
	return output.Print(res)
}
