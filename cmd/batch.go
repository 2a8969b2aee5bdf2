package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/delphi-cli/internal/output"
	"github.com/mj1618/delphi-cli/internal/target"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Run a list of click/set_text/wait steps",
	Long: `Run steps from a YAML or JSON file (or stdin with "-") and stop at the first
failure. Each step has:

  op:     click | set_text | wait
  id:     component Name
  title:  caption (alternative to id)
  text:   value for set_text, or seconds for wait
  anchor: center | left | right | top | bottom
  wait:   seconds to pause after the step (default 0.1)`,
	Example: `  delphi-cli batch login.yaml
  echo '[{op: set_text, id: TE_Username, text: admin}, {op: click, id: Btn_Login}]' | delphi-cli batch -`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().String("window", "", "Owning form title (default: foreground window)")
	batchCmd.Flags().Bool("global", false, "Search every form instead of the active one")
	batchCmd.Flags().Bool("diff", false, "Report how the active form changed")
}

// readSteps parses a step list. YAML is a superset of JSON, so one
// decoder handles both.
func readSteps(r io.Reader) ([]target.Step, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var steps []target.Step
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&steps); err != nil {
		return nil, fmt.Errorf("parse steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("no steps")
	}
	return steps, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	steps, err := readSteps(r)
	if err != nil {
		return err
	}

	opts := target.BatchOptions{Scope: target.ScopeActiveForm}
	if global, _ := cmd.Flags().GetBool("global"); global {
		opts.Scope = target.ScopeGlobal
	}
	opts.ReportChanges, _ = cmd.Flags().GetBool("diff")
	window, _ := cmd.Flags().GetString("window")

	a := newApp()
	c, err := a.bridge(cmd.Context())
	if err != nil {
		return err
	}
	form, err := a.targeter.ResolveForm(window)
	if err != nil {
		return err
	}

	res := a.targeter.RunBatch(cmd.Context(), c, form, steps, opts)
	if err := output.Print(res); err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("step %d failed: %s", res.FailedStep, res.Error)
	}
	return nil
}
