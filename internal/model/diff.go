package model

import "fmt"

// ControlChange is a control whose properties differ between two reads.
type ControlChange struct {
	AutomationID string               `yaml:"automation_id"    json:"automation_id"`
	Path         string               `yaml:"path,omitempty"   json:"path,omitempty"`
	Changes      map[string][2]string `yaml:"changes"          json:"changes"`
}

// FormDiff is the result of comparing two flattened reads of a form.
type FormDiff struct {
	Added          []FlatControl   `yaml:"added,omitempty"   json:"added,omitempty"`
	Removed        []FlatControl   `yaml:"removed,omitempty" json:"removed,omitempty"`
	Changed        []ControlChange `yaml:"changed,omitempty" json:"changed,omitempty"`
	UnchangedCount int             `yaml:"unchanged_count"   json:"unchanged_count"`
}

// Empty reports whether nothing changed.
func (d FormDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// controlKey identifies a flat control across reads. Component names are
// unique within a form, the path disambiguates frames embedded twice.
func controlKey(c FlatControl) string {
	return c.Path + "\x00" + c.AutomationID
}

// DiffControls compares two flattened reads of the same form. Controls
// are matched by path and automation id; output follows curr's order for
// added and changed controls and prev's order for removed ones.
func DiffControls(prev, curr []FlatControl) FormDiff {
	prevByKey := make(map[string]FlatControl, len(prev))
	for _, c := range prev {
		prevByKey[controlKey(c)] = c
	}
	currKeys := make(map[string]bool, len(curr))

	var diff FormDiff
	for _, c := range curr {
		key := controlKey(c)
		currKeys[key] = true
		old, existed := prevByKey[key]
		if !existed {
			diff.Added = append(diff.Added, c)
			continue
		}
		if changes := diffFlat(old, c); changes != nil {
			diff.Changed = append(diff.Changed, ControlChange{
				AutomationID: c.AutomationID,
				Path:         c.Path,
				Changes:      changes,
			})
			continue
		}
		diff.UnchangedCount++
	}

	for _, c := range prev {
		if !currKeys[controlKey(c)] {
			diff.Removed = append(diff.Removed, c)
		}
	}
	return diff
}

// diffFlat returns the changed fields as [old, new] pairs.
func diffFlat(prev, curr FlatControl) map[string][2]string {
	diffs := make(map[string][2]string)

	if prev.Text != curr.Text {
		diffs["text"] = [2]string{prev.Text, curr.Text}
	}
	if prev.ClassName != curr.ClassName {
		diffs["class_name"] = [2]string{prev.ClassName, curr.ClassName}
	}
	if pv, cv := flagValue(prev.Visible), flagValue(curr.Visible); pv != cv {
		diffs["visible"] = [2]string{fmt.Sprint(pv), fmt.Sprint(cv)}
	}
	if pe, ce := flagValue(prev.Enabled), flagValue(curr.Enabled); pe != ce {
		diffs["enabled"] = [2]string{fmt.Sprint(pe), fmt.Sprint(ce)}
	}

	if len(diffs) == 0 {
		return nil
	}
	return diffs
}

// flagValue reads an omitted-when-true flag.
func flagValue(b *bool) bool {
	return b == nil || *b
}
