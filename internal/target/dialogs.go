package target

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/platform"
)

// DialogWarning accompanies any report that found native dialogs.
const DialogWarning = "Native Win32 dialog(s) detected. They block the Delphi UI: dismiss them first by clicking one of their buttons by caption."

// DialogChildClasses are the dialog children worth reporting.
var DialogChildClasses = map[string]bool{
	"Button":       true, // OK, Cancel, Yes, No, Save, Open
	"Edit":         true,
	"ComboBox":     true,
	"ComboBoxEx32": true, // file name in Open/Save
	"Static":       true, // message text
	"CheckBox":     true,
}

const maxDialogText = 120

// DetectNativeDialogs lists the visible #32770 windows owned by the
// foreground window's process. The bridge hooks the VCL only, so it cannot
// see MessageBox, TaskDialog or the common file dialogs.
func (t *Targeter) DetectNativeDialogs() ([]model.NativeDialog, error) {
	if t.windows == nil {
		return nil, platform.ErrUnsupported
	}
	fg, err := t.windows.ForegroundWindow()
	if err != nil {
		return nil, err
	}
	if fg.Handle == 0 {
		return nil, nil
	}

	windows, err := t.windows.ListWindows(platform.ListOptions{
		PID:         fg.PID,
		ClassName:   model.DialogClass,
		VisibleOnly: true,
	})
	if err != nil {
		return nil, err
	}

	var dialogs []model.NativeDialog
	for _, w := range windows {
		children, err := t.windows.ChildWindows(w.Handle)
		if err != nil {
			t.log.Debug("cannot enumerate dialog children", zap.Int("dialog", w.Handle), zap.Error(err))
		}
		d := model.NativeDialog{
			Handle:   w.Handle,
			Title:    w.Title,
			Class:    model.DialogClass,
			Rect:     w.Rect,
			Controls: []model.DialogControl{},
		}
		for _, c := range children {
			if !DialogChildClasses[c.ClassName] || !c.Visible {
				continue
			}
			d.Controls = append(d.Controls, model.DialogControl{
				Class:  c.ClassName,
				Handle: c.Handle,
				Text:   model.TruncateText(c.Title, maxDialogText),
				ID:     c.ControlID,
			})
		}
		dialogs = append(dialogs, d)
	}
	if len(dialogs) > 0 {
		t.log.Warn("native dialogs block the bridge-visible UI", zap.Int("count", len(dialogs)))
	}
	return dialogs, nil
}

// ActiveFormReport describes what an agent can act on in the active form.
type ActiveFormReport struct {
	TS            int64                `yaml:"ts"                       json:"ts"`
	Count         int                  `yaml:"count"                    json:"count"`
	Controls      []model.FlatControl  `yaml:"controls"                 json:"controls"`
	NativeDialogs []model.NativeDialog `yaml:"native_dialogs,omitempty" json:"native_dialogs,omitempty"`
	Warning       string               `yaml:"warning,omitempty"        json:"warning,omitempty"`
}

// DescribeActiveForm checks for blocking native dialogs, then flattens the
// active form's tree into actionable controls.
func (t *Targeter) DescribeActiveForm(ctx context.Context, src ControlSource, opts model.FlattenOptions) (ActiveFormReport, error) {
	dialogs, err := t.DetectNativeDialogs()
	if err != nil {
		t.log.Debug("native dialog check skipped", zap.Error(err))
	}

	tree, err := src.ActiveFormControls(ctx)
	if err != nil {
		return ActiveFormReport{}, err
	}
	controls := model.FlattenControls(tree, opts)
	if controls == nil {
		controls = []model.FlatControl{}
	}

	report := ActiveFormReport{
		TS:       time.Now().Unix(),
		Count:    len(controls),
		Controls: controls,
	}
	if len(dialogs) > 0 {
		report.NativeDialogs = dialogs
		report.Warning = DialogWarning
	}
	return report, nil
}
