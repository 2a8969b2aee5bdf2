package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// SchemaVersion is the control-tree wire schema this package decodes.
// Bridge builds differ in which keys they emit; every key except "handle"
// is optional and takes the default documented on wireControl.
const SchemaVersion = 1

// SchemaError reports a control-tree node that failed validation.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("control schema v%d: %s: %s", SchemaVersion, e.Path, e.Reason)
}

// wireControl mirrors the bridge JSON. Pointers distinguish "absent" from
// the zero value so defaults can be applied.
type wireControl struct {
	Handle       *int          `json:"handle"`
	ClassName    *string       `json:"className"`
	Name         *string       `json:"name"`
	Text         *string       `json:"text"`
	Left         *int          `json:"left"`
	Top          *int          `json:"top"`
	Width        *int          `json:"width"`
	Height       *int          `json:"height"`
	Visible      *bool         `json:"visible"`   // default true
	Enabled      *bool         `json:"enabled"`   // default true
	ParentHandle *int          `json:"parentHandle"`
	Children     []wireControl `json:"children"`
}

type wireForm struct {
	Handle    *int    `json:"handle"`
	Title     *string `json:"title"`
	Caption   *string `json:"caption"`
	ClassName *string `json:"className"`
	Name      *string `json:"name"`
	Visible   *bool   `json:"visible"`
}

// DecodeControls parses a bridge control payload. Both a JSON array of
// nodes and a single root object are accepted; the result is always a
// slice of roots.
func DecodeControls(data []byte) ([]Control, error) {
	var nodes []wireControl
	if err := json.Unmarshal(data, &nodes); err != nil {
		var root wireControl
		if err2 := json.Unmarshal(data, &root); err2 != nil {
			return nil, fmt.Errorf("decode controls: %w", err)
		}
		nodes = []wireControl{root}
	}
	return convertControls(nodes, "$")
}

// DecodeForms parses the /forms payload.
func DecodeForms(data []byte) ([]Form, error) {
	var nodes []wireForm
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("decode forms: %w", err)
	}
	forms := make([]Form, 0, len(nodes))
	for i, n := range nodes {
		if n.Handle == nil {
			return nil, &SchemaError{Path: "$[" + strconv.Itoa(i) + "]", Reason: "missing handle"}
		}
		f := Form{
			Handle:    *n.Handle,
			Title:     str(n.Title),
			ClassName: str(n.ClassName),
			Name:      str(n.Name),
			Visible:   boolOr(n.Visible, true),
		}
		if f.Title == "" {
			f.Title = str(n.Caption)
		}
		forms = append(forms, f)
	}
	return forms, nil
}

func convertControls(nodes []wireControl, path string) ([]Control, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]Control, 0, len(nodes))
	for i, n := range nodes {
		p := path + "[" + strconv.Itoa(i) + "]"
		c, err := convertControl(n, p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func convertControl(n wireControl, path string) (Control, error) {
	if n.Handle == nil {
		return Control{}, &SchemaError{Path: path, Reason: "missing handle"}
	}
	if *n.Handle < 0 {
		return Control{}, &SchemaError{Path: path, Reason: "negative handle"}
	}
	c := Control{
		Handle:       *n.Handle,
		ClassName:    str(n.ClassName),
		Name:         str(n.Name),
		Text:         str(n.Text),
		Left:         intOr(n.Left, 0),
		Top:          intOr(n.Top, 0),
		Width:        intOr(n.Width, 0),
		Height:       intOr(n.Height, 0),
		Visible:      boolOr(n.Visible, true),
		Enabled:      boolOr(n.Enabled, true),
		ParentHandle: intOr(n.ParentHandle, 0),
	}
	if c.Width < 0 || c.Height < 0 {
		return Control{}, &SchemaError{Path: path, Reason: fmt.Sprintf("negative size %dx%d", c.Width, c.Height)}
	}
	children, err := convertControls(n.Children, path+".children")
	if err != nil {
		return Control{}, err
	}
	c.Children = children
	return c, nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
