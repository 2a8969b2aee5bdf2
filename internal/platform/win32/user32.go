//go:build windows

package win32

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procEnumChildWindows         = user32.NewProc("EnumChildWindows")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procShowWindow               = user32.NewProc("ShowWindow")
	procIsIconic                 = user32.NewProc("IsIconic")
	procIsWindow                 = user32.NewProc("IsWindow")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsWindowEnabled          = user32.NewProc("IsWindowEnabled")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procClientToScreen           = user32.NewProc("ClientToScreen")
	procGetClassNameW            = user32.NewProc("GetClassNameW")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetDlgCtrlID             = user32.NewProc("GetDlgCtrlID")
	procSendMessageW             = user32.NewProc("SendMessageW")
	procSendInput                = user32.NewProc("SendInput")
	procSetCursorPos             = user32.NewProc("SetCursorPos")
	procVkKeyScanW               = user32.NewProc("VkKeyScanW")
)

const (
	swRestore = 9
	wmSetText = 0x000C
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type point struct {
	X, Y int32
}

// Window enumeration goes through one callback per kind; Windows caps the
// number of callbacks a process may create, so they are allocated once.
var (
	enumMu      sync.Mutex
	enumResult  []windows.HWND
	enumCollect = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		enumResult = append(enumResult, hwnd)
		return 1
	})
)

// enumHandles lists top-level windows when parent is 0, otherwise all
// descendants of parent.
func enumHandles(parent windows.HWND) []windows.HWND {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumResult = nil
	if parent == 0 {
		procEnumWindows.Call(enumCollect, 0)
	} else {
		procEnumChildWindows.Call(uintptr(parent), enumCollect, 0)
	}
	out := enumResult
	enumResult = nil
	return out
}

func isWindow(hwnd windows.HWND) bool {
	r, _, _ := procIsWindow.Call(uintptr(hwnd))
	return r != 0
}

func boolCall(proc *windows.LazyProc, hwnd windows.HWND) bool {
	r, _, _ := proc.Call(uintptr(hwnd))
	return r != 0
}

func windowText(hwnd windows.HWND) string {
	n, _, _ := procGetWindowTextLengthW.Call(uintptr(hwnd))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}

func className(hwnd windows.HWND) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func windowPID(hwnd windows.HWND) int {
	var pid uint32
	procGetWindowThreadProcessId.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))
	return int(pid)
}

func windowRect(hwnd windows.HWND) (rect, error) {
	var r rect
	ok, _, err := procGetWindowRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&r)))
	if ok == 0 {
		return rect{}, fmt.Errorf("GetWindowRect(%#x): %w", hwnd, err)
	}
	return r, nil
}
