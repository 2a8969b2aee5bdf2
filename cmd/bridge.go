package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/output"
)

// DiscoverResult is the output of the discover command.
type DiscoverResult struct {
	Connected bool   `yaml:"connected"         json:"connected"`
	URL       string `yaml:"url,omitempty"     json:"url,omitempty"`
	Port      int    `yaml:"port,omitempty"    json:"port,omitempty"`
	Forms     int    `yaml:"forms"             json:"forms"`
	Process   string `yaml:"process,omitempty" json:"process,omitempty"`
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find the Delphi UI bridge on a local port",
	Long: `Scan local listening TCP ports, in ascending order, for the Delphi UI bridge.
Only sockets bound to a loopback or wildcard address are probed. A port
qualifies when it accepts a TCP connection and GET /forms returns a JSON list
of objects with a "handle" key.`,
	RunE: runDiscover,
}

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List the open Delphi forms",
	RunE:  runForms,
}

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "Print a form's control tree from the bridge",
	Long: `Print the control tree of the active form (default), the main form, or a
form by handle. Non-windowed controls have handle 0 and coordinates relative to
the form's client area.

Use --flat for a compact list of actionable controls, as agents see it. Every
flat read is kept for an hour; pass its ts to --since to print only what
changed since then.`,
	RunE: runControls,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(formsCmd)
	rootCmd.AddCommand(controlsCmd)

	controlsCmd.Flags().Int("form", 0, "Form handle from `forms` (default: active form)")
	controlsCmd.Flags().Bool("main", false, "Use the application's main form")
	controlsCmd.Flags().Bool("flat", false, "Flatten to actionable controls")
	controlsCmd.Flags().Bool("include-hidden", false, "With --flat: keep invisible controls")
	controlsCmd.Flags().Bool("include-labels", false, "With --flat: keep TLabel/TcxLabel")
	controlsCmd.Flags().Bool("include-containers", false, "With --flat: keep TPanel, TScrollBox, ...")
	controlsCmd.Flags().String("class", "", "Query every form for controls of this VCL class")
	controlsCmd.Flags().Int64("since", 0, "With --flat: diff against the read with this ts")
}

// snapshotMaxAge bounds how long flat reads are kept for --since.
const snapshotMaxAge = time.Hour

// ControlsDiffResult is the output of controls --flat --since.
type ControlsDiffResult struct {
	Form  string         `yaml:"form"  json:"form"`
	TS    int64          `yaml:"ts"    json:"ts"`
	Since int64          `yaml:"since" json:"since"`
	Diff  model.FormDiff `yaml:"diff"  json:"diff"`
}

func runDiscover(cmd *cobra.Command, args []string) error {
	a := newApp()
	c, err := a.bridges.Rediscover(cmd.Context(), currentConfig().Process)
	if err != nil {
		return err
	}
	res := DiscoverResult{
		Connected: true,
		URL:       c.BaseURL(),
		Port:      c.Port(),
		Process:   currentConfig().Process,
	}
	if forms, err := c.Forms(cmd.Context()); err == nil {
		res.Forms = len(forms)
	}
	return output.Print(res)
}

func runForms(cmd *cobra.Command, args []string) error {
	c, err := newApp().bridge(cmd.Context())
	if err != nil {
		return err
	}
	forms, err := c.Forms(cmd.Context())
	if err != nil {
		return fmt.Errorf("list forms: %w", err)
	}
	if forms == nil {
		forms = []model.Form{}
	}
	return output.Print(output.FormsResult{TS: time.Now().Unix(), Count: len(forms), Forms: forms})
}

func runControls(cmd *cobra.Command, args []string) error {
	formHandle, _ := cmd.Flags().GetInt("form")
	mainForm, _ := cmd.Flags().GetBool("main")
	flat, _ := cmd.Flags().GetBool("flat")
	className, _ := cmd.Flags().GetString("class")
	if formHandle != 0 && mainForm {
		return fmt.Errorf("--form and --main are mutually exclusive")
	}

	c, err := newApp().bridge(cmd.Context())
	if err != nil {
		return err
	}

	var (
		tree  []model.Control
		label string
	)
	switch {
	case className != "":
		tree, err = c.FindControlsByClass(cmd.Context(), className)
		label = "class " + className
	case formHandle != 0:
		tree, err = c.FormControls(cmd.Context(), formHandle)
		label = fmt.Sprintf("%d", formHandle)
	case mainForm:
		tree, err = c.MainFormControls(cmd.Context())
		label = "main"
	default:
		tree, err = c.ActiveFormControls(cmd.Context())
		label = "active"
	}
	if err != nil {
		return fmt.Errorf("read controls: %w", err)
	}

	if flat {
		opts := model.FlattenOptions{}
		opts.IncludeHidden, _ = cmd.Flags().GetBool("include-hidden")
		opts.IncludeLabels, _ = cmd.Flags().GetBool("include-labels")
		opts.IncludeContainers, _ = cmd.Flags().GetBool("include-containers")
		controls := model.FlattenControls(tree, opts)
		if controls == nil {
			controls = []model.FlatControl{}
		}
		ts := time.Now().Unix()
		model.CleanSnapshots(label, snapshotMaxAge)
		if err := model.SaveSnapshot(label, ts, controls); err != nil {
			logger.Warn("could not save snapshot", zap.String("form", label), zap.Error(err))
		}
		if since, _ := cmd.Flags().GetInt64("since"); since != 0 {
			prev, err := model.LoadSnapshot(label, since)
			if err != nil {
				return err
			}
			return output.Print(ControlsDiffResult{Form: label, TS: ts, Since: since, Diff: model.DiffControls(prev, controls)})
		}
		return output.Print(output.FlatControlsResult{Form: label, TS: ts, Count: len(controls), Controls: controls})
	}
	if tree == nil {
		tree = []model.Control{}
	}
	return output.Print(output.ControlsResult{Form: label, TS: time.Now().Unix(), Count: model.CountControls(tree), Controls: tree})
}
