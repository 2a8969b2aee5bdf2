//go:build windows

package win32

import (
	"fmt"
	"time"
	"unicode/utf16"
	"unsafe"

	"github.com/mj1618/delphi-cli/internal/platform"
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseLeftDown   = 0x0002
	mouseLeftUp     = 0x0004
	mouseRightDown  = 0x0008
	mouseRightUp    = 0x0010
	mouseMiddleDown = 0x0020
	mouseMiddleUp   = 0x0040

	keyExtended = 0x0001
	keyUp       = 0x0002
	keyUnicode  = 0x0004

	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkReturn  = 0x0D
	vkTab     = 0x09
)

// mouseInput and keyboardInput mirror INPUT with its union member. The
// union's uintptr field gives the Go struct the same alignment as the C
// one on both 32- and 64-bit targets.
type mouseInput struct {
	Type uint32
	Mi   struct {
		Dx          int32
		Dy          int32
		MouseData   uint32
		Flags       uint32
		Time        uint32
		DwExtraInfo uintptr
	}
}

type keyboardInput struct {
	Type uint32
	Ki   struct {
		Vk          uint16
		Scan        uint16
		Flags       uint32
		Time        uint32
		DwExtraInfo uintptr
	}
	_ [8]byte
}

// Win32Inputter implements platform.Inputter with SendInput.
type Win32Inputter struct{}

// NewInputter creates a new SendInput-backed inputter.
func NewInputter() *Win32Inputter {
	return &Win32Inputter{}
}

func (in *Win32Inputter) Click(x, y int, button platform.MouseButton, count int) error {
	if err := in.MoveMouse(x, y); err != nil {
		return err
	}
	down, up := uint32(mouseLeftDown), uint32(mouseLeftUp)
	switch button {
	case platform.MouseRight:
		down, up = mouseRightDown, mouseRightUp
	case platform.MouseMiddle:
		down, up = mouseMiddleDown, mouseMiddleUp
	}
	if count < 1 {
		count = 1
	}
	events := make([]mouseInput, 0, 2*count)
	for i := 0; i < count; i++ {
		events = append(events, mouseEvent(down), mouseEvent(up))
	}
	n, _, err := procSendInput.Call(uintptr(len(events)), uintptr(unsafe.Pointer(&events[0])), unsafe.Sizeof(events[0]))
	if int(n) != len(events) {
		return fmt.Errorf("SendInput(mouse): %w", err)
	}
	return nil
}

func (in *Win32Inputter) MoveMouse(x, y int) error {
	ok, _, err := procSetCursorPos.Call(uintptr(int32(x)), uintptr(int32(y)))
	if ok == 0 {
		return fmt.Errorf("SetCursorPos(%d,%d): %w", x, y, err)
	}
	return nil
}

func (in *Win32Inputter) KeyPress(key string) error {
	vk, err := platform.VirtualKey(key)
	if err != nil {
		return err
	}
	return sendKeys(keyEvent(vk, 0), keyEvent(vk, keyUp))
}

// KeyCombo holds every key but the last, taps the last, then releases in
// reverse order.
func (in *Win32Inputter) KeyCombo(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("empty key combo")
	}
	vks := make([]uint16, len(keys))
	for i, k := range keys {
		vk, err := platform.VirtualKey(k)
		if err != nil {
			return err
		}
		vks[i] = vk
	}
	events := make([]keyboardInput, 0, 2*len(vks))
	for _, vk := range vks {
		events = append(events, keyEvent(vk, 0))
	}
	for i := len(vks) - 1; i >= 0; i-- {
		events = append(events, keyEvent(vks[i], keyUp))
	}
	return sendKeys(events...)
}

// TypeText types each character with the virtual key the active keyboard
// layout maps it to, adding shift/ctrl/alt as the layout requires.
// Characters the layout cannot produce fall back to Unicode injection.
func (in *Win32Inputter) TypeText(text string, delayMs int) error {
	for i, r := range text {
		if i > 0 && delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}
		if err := typeRune(r); err != nil {
			return err
		}
	}
	return nil
}

func (in *Win32Inputter) TypeUnicode(text string) error {
	for _, unit := range utf16.Encode([]rune(text)) {
		if err := sendKeys(unicodeEvent(unit, 0), unicodeEvent(unit, keyUp)); err != nil {
			return err
		}
	}
	return nil
}

func typeRune(r rune) error {
	switch r {
	case '\n':
		return sendKeys(keyEvent(vkReturn, 0), keyEvent(vkReturn, keyUp))
	case '\t':
		return sendKeys(keyEvent(vkTab, 0), keyEvent(vkTab, keyUp))
	case '\r':
		return nil
	}
	res, _, _ := procVkKeyScanW.Call(uintptr(uint16(r)))
	scan := int16(res)
	if scan == -1 {
		return sendKeys(unicodeEvent(uint16(r), 0), unicodeEvent(uint16(r), keyUp))
	}
	vk := uint16(scan & 0xFF)
	state := (scan >> 8) & 0xFF

	var mods []uint16
	if state&1 != 0 {
		mods = append(mods, vkShift)
	}
	if state&2 != 0 {
		mods = append(mods, vkControl)
	}
	if state&4 != 0 {
		mods = append(mods, vkMenu)
	}
	events := make([]keyboardInput, 0, 2+2*len(mods))
	for _, m := range mods {
		events = append(events, keyEvent(m, 0))
	}
	events = append(events, keyEvent(vk, 0), keyEvent(vk, keyUp))
	for i := len(mods) - 1; i >= 0; i-- {
		events = append(events, keyEvent(mods[i], keyUp))
	}
	return sendKeys(events...)
}

func mouseEvent(flags uint32) mouseInput {
	var in mouseInput
	in.Type = inputMouse
	in.Mi.Flags = flags
	return in
}

func keyEvent(vk uint16, flags uint32) keyboardInput {
	var in keyboardInput
	in.Type = inputKeyboard
	in.Ki.Vk = vk
	in.Ki.Flags = flags
	if isExtendedKey(vk) {
		in.Ki.Flags |= keyExtended
	}
	return in
}

func unicodeEvent(unit uint16, flags uint32) keyboardInput {
	var in keyboardInput
	in.Type = inputKeyboard
	in.Ki.Scan = unit
	in.Ki.Flags = keyUnicode | flags
	return in
}

// isExtendedKey reports keys on the extended (non-numpad) block.
func isExtendedKey(vk uint16) bool {
	switch {
	case vk >= 0x21 && vk <= 0x28: // page up .. down arrow
		return true
	case vk == 0x2D || vk == 0x2E || vk == 0x5B: // insert, delete, win
		return true
	}
	return false
}

func sendKeys(events ...keyboardInput) error {
	if len(events) == 0 {
		return nil
	}
	n, _, err := procSendInput.Call(uintptr(len(events)), uintptr(unsafe.Pointer(&events[0])), unsafe.Sizeof(events[0]))
	if int(n) != len(events) {
		return fmt.Errorf("SendInput(keyboard): %w", err)
	}
	return nil
}
