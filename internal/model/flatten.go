package model

// FlatControl is a targetable control with a path breadcrumb instead of
// children. Only the fields an agent needs to address it are kept.
type FlatControl struct {
	AutomationID string `yaml:"automation_id"     json:"automation_id"`
	ClassName    string `yaml:"class_name"        json:"class_name"`
	Text         string `yaml:"text,omitempty"    json:"text,omitempty"`
	Visible      *bool  `yaml:"visible,omitempty" json:"visible,omitempty"` // nil = visible
	Enabled      *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"` // nil = enabled
	Path         string `yaml:"path,omitempty"    json:"path,omitempty"`
}

// FlattenOptions widens what FlattenControls keeps.
type FlattenOptions struct {
	IncludeHidden     bool
	IncludeLabels     bool
	IncludeContainers bool
}

// InnerClasses are internal parts of composite controls. They and their
// subtrees are never reported.
var InnerClasses = map[string]bool{
	"TcxCustomDropDownInnerEdit": true,
	"TDBrosGridFieldEditor":      true,
	"TcxCustomRadioGroupButton":  true,
}

// LabelClasses are read-only text controls.
var LabelClasses = map[string]bool{
	"TLabel":   true,
	"TcxLabel": true,
}

// ContainerClasses are layout-only controls.
var ContainerClasses = map[string]bool{
	"TPanel":       true,
	"TcxScrollBox": true,
	"TShape":       true,
	"TPageControl": true,
	"TScrollBox":   true,
}

const maxFlatText = 80

// FlattenControls converts a control tree into a compact list of
// actionable controls. Nodes without a Name are not addressable and are
// skipped, but their children are still visited. Invisible nodes are
// skipped unless IncludeHidden; their children are still visited so a
// visible child under a hidden wrapper survives.
func FlattenControls(controls []Control, opts FlattenOptions) []FlatControl {
	var result []FlatControl
	flattenRecursive(controls, "", opts, &result)
	return result
}

func flattenRecursive(controls []Control, parentPath string, opts FlattenOptions, result *[]FlatControl) {
	for _, c := range controls {
		if !c.Visible && !opts.IncludeHidden {
			flattenRecursive(c.Children, parentPath, opts, result)
			continue
		}
		if InnerClasses[c.ClassName] {
			continue
		}

		currentPath := parentPath
		if c.Name != "" {
			if currentPath == "" {
				currentPath = c.Name
			} else {
				currentPath = parentPath + " > " + c.Name
			}
			if keepFlat(c, opts) {
				*result = append(*result, flatFromControl(c, parentPath))
			}
		}

		flattenRecursive(c.Children, currentPath, opts, result)
	}
}

func keepFlat(c Control, opts FlattenOptions) bool {
	if LabelClasses[c.ClassName] && !opts.IncludeLabels {
		return false
	}
	if ContainerClasses[c.ClassName] && !opts.IncludeContainers {
		return false
	}
	return true
}

func flatFromControl(c Control, path string) FlatControl {
	f := FlatControl{
		AutomationID: c.Name,
		ClassName:    c.ClassName,
		Path:         path,
	}
	if c.Text != "" && c.Text != c.Name {
		f.Text = TruncateText(c.Text, maxFlatText)
	}
	if !c.Visible {
		v := false
		f.Visible = &v
	}
	if !c.Enabled {
		e := false
		f.Enabled = &e
	}
	return f
}

// TruncateText shortens s to at most n runes.
func TruncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
