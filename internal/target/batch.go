package target

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/model"
)

// Step ops.
const (
	OpClick   = "click"
	OpSetText = "set_text"
	OpWait    = "wait"
)

// defaultWaitStep is how long a wait step without a duration pauses.
const defaultWaitStep = 500 * time.Millisecond

// Step is one batch operation.
type Step struct {
	Op     string   `yaml:"op"               json:"op"`
	ID     string   `yaml:"id,omitempty"     json:"id,omitempty"`    // component Name
	Title  string   `yaml:"title,omitempty"  json:"title,omitempty"` // caption
	Text   *string  `yaml:"text,omitempty"   json:"text,omitempty"`
	Anchor string   `yaml:"anchor,omitempty" json:"anchor,omitempty"`
	Wait   *float64 `yaml:"wait,omitempty"   json:"wait,omitempty"` // seconds after the step
}

// UnmarshalJSON accepts a number for "text" so wait steps can give their
// duration as {"op": "wait", "text": 0.5}. YAML already decodes scalars
// into strings.
func (s *Step) UnmarshalJSON(data []byte) error {
	type plain Step
	aux := struct {
		*plain
		Text json.RawMessage `json:"text,omitempty"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Text = nil
	raw := bytes.TrimSpace(aux.Text)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		s.Text = &text
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("step text must be a string or a number: %w", err)
	}
	text := n.String()
	s.Text = &text
	return nil
}

// StepResult records a completed step.
type StepResult struct {
	Op string `yaml:"op"           json:"op"`
	ID string `yaml:"id,omitempty" json:"id,omitempty"`
	OK bool   `yaml:"ok"           json:"ok"`
}

// BatchOptions configures RunBatch.
type BatchOptions struct {
	Scope Scope
	// ReportChanges diffs the target form before and after the batch.
	ReportChanges bool
}

// BatchResult is the outcome of RunBatch. FailedStep is 1-based and zero
// when every step succeeded.
type BatchResult struct {
	OK            bool            `yaml:"ok"                       json:"ok"`
	Completed     int             `yaml:"completed"                json:"completed"`
	Results       []StepResult    `yaml:"results"                  json:"results"`
	FailedStep    int             `yaml:"failed_step,omitempty"    json:"failed_step,omitempty"`
	FailedCommand *Step           `yaml:"failed_command,omitempty" json:"failed_command,omitempty"`
	Error         string          `yaml:"error,omitempty"          json:"error,omitempty"`
	Changes       *model.FormDiff `yaml:"changes,omitempty"        json:"changes,omitempty"`
	TS            int64           `yaml:"ts"                       json:"ts"`
}

// RunBatch executes steps in order against form and stops at the first
// failure. Control lookups go through src with opts.Scope; every lookup
// takes the first match.
func (t *Targeter) RunBatch(ctx context.Context, src ControlSource, form int, steps []Step, opts BatchOptions) BatchResult {
	res := BatchResult{TS: time.Now().Unix(), Results: []StepResult{}}

	var before []model.FlatControl
	if opts.ReportChanges {
		if tree, err := formTree(ctx, src, form); err == nil {
			before = model.FlattenControls(tree, model.FlattenOptions{IncludeLabels: true})
		} else {
			t.log.Debug("no baseline for batch diff", zap.Error(err))
		}
	}

	for i, step := range steps {
		sr, err := t.runStep(ctx, src, form, step, opts.Scope)
		if err != nil {
			failed := step
			res.FailedStep = i + 1
			res.FailedCommand = &failed
			res.Error = err.Error()
			t.log.Warn("batch step failed", zap.Int("step", i+1), zap.String("op", step.Op), zap.Error(err))
			return res
		}
		res.Results = append(res.Results, sr)
		res.Completed++
	}
	res.OK = true

	if opts.ReportChanges && before != nil {
		if tree, err := formTree(ctx, src, form); err == nil {
			diff := model.DiffControls(before, model.FlattenControls(tree, model.FlattenOptions{IncludeLabels: true}))
			res.Changes = &diff
		} else {
			t.log.Debug("no final read for batch diff", zap.Error(err))
		}
	}
	return res
}

// formTree reads form's controls, or the active form's when form is 0.
func formTree(ctx context.Context, src ControlSource, form int) ([]model.Control, error) {
	if form == 0 {
		return src.ActiveFormControls(ctx)
	}
	return src.FormControls(ctx, form)
}

func (t *Targeter) runStep(ctx context.Context, src ControlSource, form int, step Step, scope Scope) (StepResult, error) {
	switch step.Op {
	case "":
		return StepResult{}, fmt.Errorf("missing 'op' in step")
	case OpWait:
		d, err := waitDuration(step)
		if err != nil {
			return StepResult{}, err
		}
		if err := t.sleep(ctx, d); err != nil {
			return StepResult{}, err
		}
		return StepResult{Op: OpWait, OK: true}, nil
	case OpClick, OpSetText:
	default:
		return StepResult{}, fmt.Errorf("unknown op: %q", step.Op)
	}

	if step.ID == "" && step.Title == "" {
		return StepResult{}, fmt.Errorf("step needs 'id' or 'title'")
	}
	anchor, err := ParseAnchor(step.Anchor)
	if err != nil {
		return StepResult{}, err
	}
	if step.Op == OpSetText && step.Text == nil {
		return StepResult{}, fmt.Errorf("missing 'text' for set_text")
	}

	q := Query{AutoID: step.ID, Caption: step.Title, Scope: scope, Policy: PolicyFirst}
	controls, err := FindControls(ctx, src, q)
	if err != nil {
		return StepResult{}, err
	}
	if len(controls) == 0 {
		return StepResult{}, fmt.Errorf("control %s: %w", q, ErrNotFound)
	}
	ctrl := controls[0]

	if step.Op == OpClick {
		if _, err := t.Click(ctx, ctrl, form, anchor); err != nil {
			return StepResult{}, err
		}
	} else {
		if err := t.SetText(ctx, ctrl, form, *step.Text); err != nil {
			return StepResult{}, err
		}
	}

	if err := t.sleep(ctx, t.stepWait(step)); err != nil {
		return StepResult{}, err
	}
	return StepResult{Op: step.Op, ID: ctrl.Name, OK: true}, nil
}

func (t *Targeter) stepWait(step Step) time.Duration {
	if step.Wait == nil {
		return t.StepWait
	}
	return seconds(*step.Wait)
}

// waitDuration reads a wait step's pause from "wait", then "text", then
// falls back to defaultWaitStep.
func waitDuration(step Step) (time.Duration, error) {
	if step.Wait != nil {
		return seconds(*step.Wait), nil
	}
	if step.Text != nil {
		s, err := strconv.ParseFloat(*step.Text, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid wait duration %q: %w", *step.Text, err)
		}
		return seconds(s), nil
	}
	return defaultWaitStep, nil
}

func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
