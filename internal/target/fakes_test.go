package target

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/platform"
)

// events records every input and focus call in order.
type events []string

func (e *events) add(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

type fakeWindows struct {
	ev         *events
	top        []model.Window
	children   map[int][]model.Window
	rects      map[int]model.Rect
	origins    map[int]model.Point
	foreground model.Window
	focusErr   error
}

func (f *fakeWindows) ListWindows(opts platform.ListOptions) ([]model.Window, error) {
	var out []model.Window
	for _, w := range f.top {
		if opts.Match(w.PID, w.ClassName, w.Title, w.Visible) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWindows) ChildWindows(handle int) ([]model.Window, error) {
	return f.children[handle], nil
}

func (f *fakeWindows) ForegroundWindow() (model.Window, error) { return f.foreground, nil }

func (f *fakeWindows) FocusWindow(handle int) error {
	f.ev.add("focus %d", handle)
	return f.focusErr
}

func (f *fakeWindows) WindowRect(handle int) (model.Rect, error) {
	r, ok := f.rects[handle]
	if !ok {
		return model.Rect{}, fmt.Errorf("invalid window handle %d", handle)
	}
	return r, nil
}

func (f *fakeWindows) ClientOrigin(handle int) (model.Point, error) {
	p, ok := f.origins[handle]
	if !ok {
		return model.Point{}, fmt.Errorf("invalid window handle %d", handle)
	}
	return p, nil
}

type fakeInput struct {
	ev       *events
	interval int
	clickErr error
}

func (f *fakeInput) Click(x, y int, button platform.MouseButton, count int) error {
	f.ev.add("click %d,%d %s", x, y, button)
	return f.clickErr
}
func (f *fakeInput) MoveMouse(x, y int) error  { return nil }
func (f *fakeInput) KeyPress(key string) error { f.ev.add("key %s", key); return nil }
func (f *fakeInput) KeyCombo(keys []string) error {
	f.ev.add("combo %s", strings.Join(keys, "+"))
	return nil
}

// TypeText records one event per character, the way the Win32 backend
// sends them.
func (f *fakeInput) TypeText(text string, delayMs int) error {
	f.interval = delayMs
	for _, r := range text {
		f.ev.add("char %c", r)
	}
	return nil
}

func (f *fakeInput) TypeUnicode(text string) error { f.ev.add("unicode %s", text); return nil }

type fakeSetter struct{ ev *events }

func (f *fakeSetter) SetWindowText(handle int, text string) error {
	f.ev.add("settext %d %q", handle, text)
	return nil
}

// fakeSource serves a fixed active tree and a fixed flat query result.
type fakeSource struct {
	active      []model.Control
	forms       map[int][]model.Control
	flat        []model.Control
	err         error
	activeCalls int
	lastFilter  model.ControlFilter
}

func (f *fakeSource) ActiveFormControls(context.Context) ([]model.Control, error) {
	f.activeCalls++
	return f.active, f.err
}

func (f *fakeSource) FormControls(_ context.Context, handle int) ([]model.Control, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.forms[handle], nil
}

func (f *fakeSource) Controls(_ context.Context, filter model.ControlFilter) ([]model.Control, error) {
	f.lastFilter = filter
	return f.flat, f.err
}

var errBridgeDown = errors.New("dial tcp 127.0.0.1:9000: connection refused")

const loginForm = 1001

// loginTree is one form with a non-windowed login button and username
// edit, and a windowed password edit.
func loginTree() []model.Control {
	return []model.Control{{
		Handle: loginForm, ClassName: "TfrmLogin", Name: "frmLogin", Text: "Login",
		Width: 300, Height: 200, Visible: true, Enabled: true,
		Children: []model.Control{
			{ClassName: "TcxTextEdit", Name: "TE_Username", Left: 10, Top: 50, Width: 150, Height: 21, Visible: true, Enabled: true},
			{Handle: 3003, ClassName: "TEdit", Name: "TE_Password", Left: 10, Top: 80, Width: 150, Height: 21, Visible: true, Enabled: true},
			{ClassName: "TcxButton", Name: "Btn_Login", Text: "OK", Left: 10, Top: 10, Width: 80, Height: 24, Visible: true, Enabled: true},
		},
	}}
}

type harness struct {
	ev      *events
	windows *fakeWindows
	input   *fakeInput
	t       *Targeter
}

// newHarness puts the login form in the foreground with its client area
// at (100,100).
func newHarness() *harness {
	ev := &events{}
	login := model.Window{Handle: loginForm, Title: "Login", ClassName: "TfrmLogin", PID: 42, Visible: true}
	wm := &fakeWindows{
		ev:         ev,
		top:        []model.Window{login, {Handle: 5005, Title: "Settings", ClassName: "TfrmSettings", PID: 42, Visible: true}},
		foreground: login,
		children: map[int][]model.Window{
			loginForm: {
				{Handle: 3003, Title: "", ClassName: "TEdit", Visible: true, Enabled: true},
				{Handle: 4004, Title: "Cancel", ClassName: "TButton", Visible: true, Enabled: true},
			},
		},
		rects: map[int]model.Rect{
			3003: {Left: 110, Top: 180, Width: 150, Height: 21},
			4004: {Left: 300, Top: 260, Width: 75, Height: 25},
		},
		origins: map[int]model.Point{loginForm: {X: 100, Y: 100}},
	}
	in := &fakeInput{ev: ev}
	p := &platform.Provider{WindowManager: wm, Inputter: in, ValueSetter: &fakeSetter{ev: ev}}
	return &harness{
		ev:      ev,
		windows: wm,
		input:   in,
		t:       New(p, WithSleep(func(context.Context, time.Duration) error { return nil })),
	}
}
