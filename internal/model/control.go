package model

// Control is a VCL control as reported by the bridge. Handle is 0 for
// non-windowed controls (TLabel, TSpeedButton, most DevExpress painters),
// which only the bridge can see.
type Control struct {
	Handle       int       `yaml:"handle"                 json:"handle"`
	ClassName    string    `yaml:"className"              json:"className"`
	Name         string    `yaml:"name,omitempty"         json:"name,omitempty"`
	Text         string    `yaml:"text,omitempty"         json:"text,omitempty"`
	Left         int       `yaml:"left"                   json:"left"`
	Top          int       `yaml:"top"                    json:"top"`
	Width        int       `yaml:"width"                  json:"width"`
	Height       int       `yaml:"height"                 json:"height"`
	Visible      bool      `yaml:"visible"                json:"visible"`
	Enabled      bool      `yaml:"enabled"                json:"enabled"`
	ParentHandle int       `yaml:"parentHandle,omitempty" json:"parentHandle,omitempty"`
	Children     []Control `yaml:"children,omitempty"     json:"children,omitempty"`
}

// Windowed reports whether the control is backed by a native window.
func (c Control) Windowed() bool {
	return c.Handle != 0
}

// Bounds returns the control's reported rectangle. For non-windowed
// controls this is relative to the owning form's client area.
func (c Control) Bounds() Rect {
	return Rect{Left: c.Left, Top: c.Top, Width: c.Width, Height: c.Height}
}

// Form is a top-level VCL form listed by the bridge.
type Form struct {
	Handle    int    `yaml:"handle"              json:"handle"`
	Title     string `yaml:"title"               json:"title"`
	ClassName string `yaml:"className,omitempty" json:"className,omitempty"`
	Name      string `yaml:"name,omitempty"      json:"name,omitempty"`
	Visible   bool   `yaml:"visible"             json:"visible"`
}

// ControlFilter narrows the bridge's flat control query. Empty fields are
// not sent.
type ControlFilter struct {
	ClassName string
	Name      string
	Caption   string
}

// Rect is a screen or client rectangle.
type Rect struct {
	Left   int `yaml:"left"   json:"left"`
	Top    int `yaml:"top"    json:"top"`
	Width  int `yaml:"width"  json:"width"`
	Height int `yaml:"height" json:"height"`
}

func (r Rect) Right() int  { return r.Left + r.Width }
func (r Rect) Bottom() int { return r.Top + r.Height }

// Offset returns r translated by p.
func (r Rect) Offset(p Point) Rect {
	r.Left += p.X
	r.Top += p.Y
	return r
}

// Point is a screen coordinate.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}
