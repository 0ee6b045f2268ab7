package window

import "github.com/tinyrange/pixie/internal/input"

// Unmapped marks a key with no native code on the current platform.
const Unmapped = ^uint32(0)

// KeyMap translates between input keys and native key codes.
type KeyMap [input.KeyCount]uint32

// NewKeyMap builds a KeyMap from codes. Keys missing from codes are Unmapped.
func NewKeyMap(codes map[input.Key]uint32) KeyMap {
	var m KeyMap
	for i := range m {
		m[i] = Unmapped
	}
	for k, code := range codes {
		if k.Valid() {
			m[k] = code
		}
	}
	return m
}

// Native returns the platform code for key.
func (m *KeyMap) Native(key input.Key) (uint32, bool) {
	if !key.Valid() || m[key] == Unmapped {
		return Unmapped, false
	}
	return m[key], true
}

// Lookup returns the key bound to a platform code, or input.KeyUnknown.
func (m *KeyMap) Lookup(code uint32) input.Key {
	if code == Unmapped {
		return input.KeyUnknown
	}
	for k := input.KeyUnknown + 1; k < input.KeyCount; k++ {
		if m[k] == code {
			return k
		}
	}
	return input.KeyUnknown
}
