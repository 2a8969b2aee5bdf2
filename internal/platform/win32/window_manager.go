//go:build windows

package win32

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/platform"
)

// Win32WindowManager implements platform.WindowManager.
type Win32WindowManager struct {
	input *Win32Inputter
}

// NewWindowManager creates a window manager. The inputter is used to
// release the foreground lock when SetForegroundWindow is refused.
func NewWindowManager(input *Win32Inputter) *Win32WindowManager {
	return &Win32WindowManager{input: input}
}

func (wm *Win32WindowManager) ListWindows(opts platform.ListOptions) ([]model.Window, error) {
	var out []model.Window
	for _, h := range enumHandles(0) {
		w := describe(h)
		if opts.Match(w.PID, w.ClassName, w.Title, w.Visible) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (wm *Win32WindowManager) ChildWindows(handle int) ([]model.Window, error) {
	parent := windows.HWND(handle)
	if !isWindow(parent) {
		return nil, fmt.Errorf("invalid window handle %#x", handle)
	}
	handles := enumHandles(parent)
	out := make([]model.Window, 0, len(handles))
	for _, h := range handles {
		w := describe(h)
		id, _, _ := procGetDlgCtrlID.Call(uintptr(h))
		w.ControlID = int(int32(id))
		out = append(out, w)
	}
	return out, nil
}

func (wm *Win32WindowManager) ForegroundWindow() (model.Window, error) {
	h, _, _ := procGetForegroundWindow.Call()
	if h == 0 {
		return model.Window{}, nil
	}
	w := describe(windows.HWND(h))
	w.Focused = true
	return w, nil
}

func (wm *Win32WindowManager) FocusWindow(handle int) error {
	hwnd := windows.HWND(handle)
	if !isWindow(hwnd) {
		return fmt.Errorf("invalid window handle %#x", handle)
	}
	if boolCall(procIsIconic, hwnd) {
		procShowWindow.Call(uintptr(hwnd), swRestore)
	}
	if ok, _, _ := procSetForegroundWindow.Call(uintptr(hwnd)); ok != 0 {
		return nil
	}

	// Windows only lets the process that received the last input event
	// change the foreground window. A synthetic Alt tap makes us that
	// process.
	if wm.input != nil {
		if err := wm.input.KeyPress("alt"); err != nil {
			return fmt.Errorf("release foreground lock: %w", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if ok, _, err := procSetForegroundWindow.Call(uintptr(hwnd)); ok == 0 {
		return fmt.Errorf("SetForegroundWindow(%#x): %w", handle, err)
	}
	return nil
}

func (wm *Win32WindowManager) WindowRect(handle int) (model.Rect, error) {
	hwnd := windows.HWND(handle)
	if !isWindow(hwnd) {
		return model.Rect{}, fmt.Errorf("invalid window handle %#x", handle)
	}
	r, err := windowRect(hwnd)
	if err != nil {
		return model.Rect{}, err
	}
	return toRect(r), nil
}

func (wm *Win32WindowManager) ClientOrigin(handle int) (model.Point, error) {
	hwnd := windows.HWND(handle)
	var p point
	ok, _, err := procClientToScreen.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&p)))
	if ok == 0 {
		return model.Point{}, fmt.Errorf("ClientToScreen(%#x): %w", handle, err)
	}
	return model.Point{X: int(p.X), Y: int(p.Y)}, nil
}

func describe(h windows.HWND) model.Window {
	w := model.Window{
		Handle:    int(h),
		Title:     windowText(h),
		ClassName: className(h),
		PID:       windowPID(h),
		Visible:   boolCall(procIsWindowVisible, h),
		Enabled:   boolCall(procIsWindowEnabled, h),
	}
	if r, err := windowRect(h); err == nil {
		w.Rect = toRect(r)
	}
	return w
}

func toRect(r rect) model.Rect {
	return model.Rect{
		Left:   int(r.Left),
		Top:    int(r.Top),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}
}
