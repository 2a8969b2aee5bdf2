package model

// DialogClass is the window class of Win32 common dialogs (MessageBox,
// TaskDialog, Open/Save).
const DialogClass = "#32770"

// NativeDialog is a Win32 dialog the bridge cannot see. It blocks input to
// the VCL forms until dismissed.
type NativeDialog struct {
	Handle   int             `yaml:"handle"   json:"handle"`
	Title    string          `yaml:"title"    json:"title"`
	Class    string          `yaml:"class"    json:"class"`
	Rect     Rect            `yaml:"rect"     json:"rect"`
	Controls []DialogControl `yaml:"controls" json:"controls"`
}

// DialogControl is an interactive child of a NativeDialog.
type DialogControl struct {
	Class  string `yaml:"class"          json:"class"`
	Handle int    `yaml:"handle"         json:"handle"`
	Text   string `yaml:"text,omitempty" json:"text,omitempty"`
	ID     int    `yaml:"id,omitempty"   json:"id,omitempty"`
}
