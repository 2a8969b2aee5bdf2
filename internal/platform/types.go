package platform

import (
	"fmt"
	"strings"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// ParseMouseButton converts a string flag value to MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "left", "":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

func (b MouseButton) String() string {
	switch b {
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	default:
		return "left"
	}
}

// ListOptions filters top-level window enumeration.
type ListOptions struct {
	PID         int    // Only windows of this process (0 = any)
	ClassName   string // Exact window class (empty = any)
	Title       string // Case-insensitive title substring (empty = any)
	VisibleOnly bool
}

// Match reports whether w satisfies the options. Backends that cannot
// filter natively apply it after enumeration.
func (o ListOptions) Match(pid int, className, title string, visible bool) bool {
	if o.PID != 0 && pid != o.PID {
		return false
	}
	if o.ClassName != "" && className != o.ClassName {
		return false
	}
	if o.Title != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(o.Title)) {
		return false
	}
	if o.VisibleOnly && !visible {
		return false
	}
	return true
}
