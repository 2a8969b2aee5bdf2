//go:build windows

package win32

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Win32ValueSetter implements platform.ValueSetter with WM_SETTEXT.
type Win32ValueSetter struct{}

// NewValueSetter creates a new value setter.
func NewValueSetter() *Win32ValueSetter {
	return &Win32ValueSetter{}
}

func (vs *Win32ValueSetter) SetWindowText(handle int, text string) error {
	hwnd := windows.HWND(handle)
	if !isWindow(hwnd) {
		return fmt.Errorf("invalid window handle %#x", handle)
	}
	p, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return fmt.Errorf("encode text: %w", err)
	}
	ok, _, _ := procSendMessageW.Call(uintptr(hwnd), wmSetText, 0, uintptr(unsafe.Pointer(p)))
	if ok == 0 {
		return fmt.Errorf("WM_SETTEXT rejected by window %#x", handle)
	}
	return nil
}
