package input

import "fmt"

// Key represents a keyboard key. The set is intentionally small; physical
// keys outside it cannot be queried.
type Key int

const (
	KeyUnknown Key = iota

	// Letters
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	// Numbers
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	// Modifier keys
	KeyLeftShift
	KeyRightShift

	// Special keys
	KeyEscape
	KeyBackspace
	KeyDelete

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Navigation keys
	KeyHome
	KeyEnd

	KeyPeriod // .

	// KeyCount is the number of keys, including KeyUnknown.
	KeyCount
)

var keyNames = [KeyCount]string{
	KeyUnknown:    "Unknown",
	KeyLeftShift:  "LeftShift",
	KeyRightShift: "RightShift",
	KeyEscape:     "Escape",
	KeyBackspace:  "Backspace",
	KeyDelete:     "Delete",
	KeyUp:         "Up",
	KeyDown:       "Down",
	KeyLeft:       "Left",
	KeyRight:      "Right",
	KeyHome:       "Home",
	KeyEnd:        "End",
	KeyPeriod:     "Period",
}

func init() {
	for k := KeyA; k <= KeyZ; k++ {
		keyNames[k] = string(rune('A' + (k - KeyA)))
	}
	for k := Key0; k <= Key9; k++ {
		keyNames[k] = string(rune('0' + (k - Key0)))
	}
}

// Valid reports whether k names a queryable key.
func (k Key) Valid() bool {
	return k > KeyUnknown && k < KeyCount
}

func (k Key) String() string {
	if k < 0 || k >= KeyCount {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// Button represents a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle

	// ButtonCount is the number of tracked mouse buttons.
	ButtonCount
)

// Valid reports whether b names a tracked button.
func (b Button) Valid() bool {
	return b >= 0 && b < ButtonCount
}

func (b Button) mask() uint8 {
	return 1 << uint(b)
}

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	case ButtonMiddle:
		return "Middle"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}
