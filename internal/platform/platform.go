package platform

import (
	"context"

	"github.com/mj1618/delphi-cli/internal/model"
)

// WindowManager enumerates and queries native windows.
type WindowManager interface {
	// ListWindows returns top-level windows, optionally filtered.
	ListWindows(opts ListOptions) ([]model.Window, error)

	// ChildWindows returns the direct and nested child windows of handle.
	ChildWindows(handle int) ([]model.Window, error)

	// ForegroundWindow returns the window that currently has input focus.
	ForegroundWindow() (model.Window, error)

	// FocusWindow brings handle to the foreground.
	FocusWindow(handle int) error

	// WindowRect returns the current screen rectangle of handle.
	WindowRect(handle int) (model.Rect, error)

	// ClientOrigin returns the screen position of the top-left corner of
	// handle's client area.
	ClientOrigin(handle int) (model.Point, error)
}

// Inputter simulates mouse and keyboard input.
type Inputter interface {
	Click(x, y int, button MouseButton, count int) error
	MoveMouse(x, y int) error
	KeyPress(key string) error
	KeyCombo(keys []string) error
	// TypeText types ASCII text key by key, pausing delayMs between keys.
	TypeText(text string, delayMs int) error
	// TypeUnicode injects arbitrary text as Unicode key events.
	TypeUnicode(text string) error
}

// ValueSetter writes a native window's text buffer directly.
type ValueSetter interface {
	// SetWindowText is the WM_SETTEXT equivalent. It does not notify the
	// owning toolkit, so composite controls may ignore the new value.
	SetWindowText(handle int, text string) error
}

// Listener is a local TCP socket in the LISTEN state.
type Listener struct {
	IP   string
	Port int
	PID  int // 0 when the owner is unknown
}

// SocketTable maps listening sockets to their owning processes.
type SocketTable interface {
	Listeners(ctx context.Context) ([]Listener, error)
	// ProcessName returns the image name of pid, e.g. "FineAid.exe".
	ProcessName(ctx context.Context, pid int) (string, error)
}
