package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/output"
	"github.com/mj1618/delphi-cli/internal/render"
)

// MapResult is the output of the map command.
type MapResult struct {
	OK       bool   `yaml:"ok"       json:"ok"`
	Form     int    `yaml:"form"     json:"form"`
	Controls int    `yaml:"controls" json:"controls"`
	File     string `yaml:"file"     json:"file"`
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Draw a wireframe PNG of a form's control layout",
	Long: `Draw every control of a form as a box at its bridge coordinates. Blue boxes
have a native window handle, red boxes exist only in the bridge, grey boxes
are disabled.

--labels coords prints the screen point a center click would hit, using the
form's current client origin.`,
	Example: `  delphi-cli map -o layout.png
  delphi-cli map --form 1312 --labels coords --scale 2 -o login.png`,
	RunE: runMap,
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().Int("form", 0, "Form handle (default: active form)")
	mapCmd.Flags().String("labels", "names", "Box labels: names, coords, none")
	mapCmd.Flags().Float64("scale", 1, "Scale factor")
	mapCmd.Flags().Bool("include-hidden", false, "Draw invisible controls")
	mapCmd.Flags().StringP("output", "o", "layout.png", "PNG file to write")
}

func parseLabelMode(s string) (render.LabelMode, error) {
	switch s {
	case "names", "":
		return render.LabelNames, nil
	case "coords":
		return render.LabelCoords, nil
	case "none":
		return render.LabelNone, nil
	}
	return render.LabelNames, fmt.Errorf("unknown labels mode: %q (expected names, coords, or none)", s)
}

func runMap(cmd *cobra.Command, args []string) error {
	formHandle, _ := cmd.Flags().GetInt("form")
	labels, _ := cmd.Flags().GetString("labels")
	path, _ := cmd.Flags().GetString("output")
	opts := render.Options{}
	opts.Scale, _ = cmd.Flags().GetFloat64("scale")
	opts.IncludeHidden, _ = cmd.Flags().GetBool("include-hidden")
	mode, err := parseLabelMode(labels)
	if err != nil {
		return err
	}
	opts.Labels = mode

	a := newApp()
	c, err := a.bridge(cmd.Context())
	if err != nil {
		return err
	}
	var tree []model.Control
	if formHandle != 0 {
		tree, err = c.FormControls(cmd.Context(), formHandle)
	} else {
		tree, err = c.ActiveFormControls(cmd.Context())
		if err == nil && len(tree) == 1 {
			formHandle = tree[0].Handle
		}
	}
	if err != nil {
		return fmt.Errorf("read controls: %w", err)
	}

	if mode == render.LabelCoords && formHandle != 0 {
		if origin, err := a.targeter.ClientOrigin(formHandle); err == nil {
			opts.Origin = origin
		} else {
			a.log.Warn("coordinates are client-relative: no client origin", zap.Int("form", formHandle), zap.Error(err))
		}
	}

	data, err := render.EncodePNG(tree, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return output.Print(MapResult{OK: true, Form: formHandle, Controls: model.CountControls(tree), File: path})
}
