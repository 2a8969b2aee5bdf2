//go:build windows

package win32

import (
	"testing"
	"unsafe"
)

func TestInputLayout(t *testing.T) {
	want := uintptr(28)
	if unsafe.Sizeof(uintptr(0)) == 8 {
		want = 40
	}
	if got := unsafe.Sizeof(mouseInput{}); got != want {
		t.Errorf("sizeof(mouseInput) = %d, want %d", got, want)
	}
	if got := unsafe.Sizeof(keyboardInput{}); got != want {
		t.Errorf("sizeof(keyboardInput) = %d, want %d", got, want)
	}
}

func TestIsExtendedKey(t *testing.T) {
	for vk, want := range map[uint16]bool{0x2E: true, 0x25: true, 0x41: false, 0x0D: false} {
		if got := isExtendedKey(vk); got != want {
			t.Errorf("isExtendedKey(%#x) = %v, want %v", vk, got, want)
		}
	}
}
