package model

// Window is a native top-level or child window reported by the OS.
type Window struct {
	Handle    int    `yaml:"handle"               json:"handle"`
	Title     string `yaml:"title,omitempty"      json:"title,omitempty"`
	ClassName string `yaml:"class"                json:"class"`
	PID       int    `yaml:"pid"                  json:"pid"`
	Rect      Rect   `yaml:"rect"                 json:"rect"`
	Visible   bool   `yaml:"visible"              json:"visible"`
	Enabled   bool   `yaml:"enabled"              json:"enabled"`
	ControlID int    `yaml:"id,omitempty"         json:"id,omitempty"`
	Focused   bool   `yaml:"focused,omitempty"    json:"focused,omitempty"`
}

// AsControl converts a native child window into a Control so it can flow
// through the same targeting path as bridge-reported controls. The rect is
// kept in screen coordinates; resolution always goes through the handle.
func (w Window) AsControl() Control {
	return Control{
		Handle:    w.Handle,
		ClassName: w.ClassName,
		Text:      w.Title,
		Left:      w.Rect.Left,
		Top:       w.Rect.Top,
		Width:     w.Rect.Width,
		Height:    w.Rect.Height,
		Visible:   w.Visible,
		Enabled:   w.Enabled,
	}
}
