package platform

import (
	"fmt"
	"strings"
)

// Virtual-key codes for named keys.
var virtualKeys = map[string]uint16{
	"backspace": 0x08,
	"tab":       0x09,
	"enter":     0x0D,
	"return":    0x0D,
	"shift":     0x10,
	"ctrl":      0x11,
	"control":   0x11,
	"alt":       0x12,
	"pause":     0x13,
	"capslock":  0x14,
	"esc":       0x1B,
	"escape":    0x1B,
	"space":     0x20,
	"pageup":    0x21,
	"pagedown":  0x22,
	"end":       0x23,
	"home":      0x24,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
	"insert":    0x2D,
	"delete":    0x2E,
	"del":       0x2E,
	"win":       0x5B,
	"f1":        0x70,
	"f2":        0x71,
	"f3":        0x72,
	"f4":        0x73,
	"f5":        0x74,
	"f6":        0x75,
	"f7":        0x76,
	"f8":        0x77,
	"f9":        0x78,
	"f10":       0x79,
	"f11":       0x7A,
	"f12":       0x7B,
}

// modifierKeys are held down while the last key of a combo is pressed.
var modifierKeys = map[string]bool{
	"shift": true, "ctrl": true, "control": true, "alt": true, "win": true,
}

// VirtualKey maps a key name ("enter", "ctrl", "a", "5", "f4") to its
// virtual-key code. Letters and digits map to their uppercase ASCII code.
func VirtualKey(name string) (uint16, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if vk, ok := virtualKeys[n]; ok {
		return vk, nil
	}
	if len(n) == 1 {
		ch := n[0]
		switch {
		case ch >= 'a' && ch <= 'z':
			return uint16(ch - 'a' + 'A'), nil
		case ch >= '0' && ch <= '9':
			return uint16(ch), nil
		}
	}
	return 0, fmt.Errorf("unknown key: %q", name)
}

// IsModifier reports whether name is a modifier key.
func IsModifier(name string) bool {
	return modifierKeys[strings.ToLower(strings.TrimSpace(name))]
}

// ParseKeyCombo splits "ctrl+shift+t" into its parts and validates each.
func ParseKeyCombo(combo string) ([]string, error) {
	parts := strings.Split(combo, "+")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("invalid key combo %q", combo)
		}
		if _, err := VirtualKey(p); err != nil {
			return nil, err
		}
		keys = append(keys, p)
	}
	return keys, nil
}

// IsASCII reports whether s contains only 7-bit characters.
func IsASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
