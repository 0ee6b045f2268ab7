// Package input tracks keyboard and mouse state across frame boundaries.
//
// A Tracker keeps two snapshots of key and button state. The platform layer
// writes the current snapshot while it pumps events; Advance moves it into the
// previous snapshot at the start of the next frame. Edge queries compare the
// two, so a transition is reported for exactly one frame.
//
// The first frame starts from an all-up previous snapshot. A key that is
// already held when the window opens never reports HasKeyGoneDown until it is
// released and pressed again.
package input

// MaxInputChars is the capacity of the per-frame character buffer, including
// the terminator slot. At most MaxInputChars-1 characters are kept per frame.
const MaxInputChars = 32

// Sink receives raw input state from a platform event pump.
type Sink interface {
	SetKeyDown(key Key, down bool)
	SetMouseButtonDown(button Button, down bool)
	SetMousePosition(x, y int)
	AppendCharacter(c byte)

	// ReleaseAll marks every key and button up, for when the window stops
	// receiving input.
	ReleaseAll()
}

// Tracker is the per-window input state. The zero value is ready to use.
// It is owned by the thread that pumps the window and is not safe for
// concurrent use.
type Tracker struct {
	keys     [KeyCount]bool
	prevKeys [KeyCount]bool

	// released records keys that went from down to up during this frame,
	// even if they were pressed again before the frame ended.
	released [KeyCount]bool

	buttons     uint8
	prevButtons uint8

	mouseX, mouseY int

	chars  [MaxInputChars]byte
	nchars int
}

var _ Sink = (*Tracker)(nil)

// Advance starts a new frame: the current key and button state becomes the
// previous state, and the release log and character buffer are emptied.
func (t *Tracker) Advance() {
	t.prevKeys = t.keys
	t.prevButtons = t.buttons
	t.released = [KeyCount]bool{}
	t.nchars = 0
}

func (t *Tracker) IsKeyDown(key Key) bool {
	return key.Valid() && t.keys[key]
}

func (t *Tracker) HasKeyGoneDown(key Key) bool {
	return key.Valid() && t.keys[key] && !t.prevKeys[key]
}

func (t *Tracker) HasKeyGoneUp(key Key) bool {
	return key.Valid() && !t.keys[key] && t.prevKeys[key]
}

// WasKeyReleased reports whether a release of key was delivered during this
// frame. Unlike HasKeyGoneUp it also sees a press and release that both land
// inside one frame.
func (t *Tracker) WasKeyReleased(key Key) bool {
	return key.Valid() && t.released[key]
}

func (t *Tracker) IsMouseButtonDown(button Button) bool {
	return button.Valid() && t.buttons&button.mask() != 0
}

func (t *Tracker) HasMouseButtonGoneDown(button Button) bool {
	if !button.Valid() {
		return false
	}
	m := button.mask()
	return t.buttons&m != 0 && t.prevButtons&m == 0
}

func (t *Tracker) HasMouseButtonGoneUp(button Button) bool {
	if !button.Valid() {
		return false
	}
	m := button.mask()
	return t.buttons&m == 0 && t.prevButtons&m != 0
}

// MousePosition returns the cursor in client-area coordinates for the
// current frame.
func (t *Tracker) MousePosition() (x, y int) {
	return t.mouseX, t.mouseY
}

// InputCharacters returns the printable characters typed during the current
// frame, in order.
func (t *Tracker) InputCharacters() string {
	return string(t.chars[:t.nchars])
}

// SetKeyDown records the raw state of key. Unknown keys are ignored.
func (t *Tracker) SetKeyDown(key Key, down bool) {
	if !key.Valid() {
		return
	}
	if !down && t.keys[key] {
		t.released[key] = true
	}
	t.keys[key] = down
}

// SetMouseButtonDown records the raw state of button. Unknown buttons are
// ignored.
func (t *Tracker) SetMouseButtonDown(button Button, down bool) {
	if !button.Valid() {
		return
	}
	if down {
		t.buttons |= button.mask()
	} else {
		t.buttons &^= button.mask()
	}
}

// ReleaseAll marks every key and button up. The resulting edges are reported
// by HasKeyGoneUp and HasMouseButtonGoneUp, but WasKeyReleased does not see
// them because no release was delivered.
func (t *Tracker) ReleaseAll() {
	t.keys = [KeyCount]bool{}
	t.buttons = 0
}

func (t *Tracker) SetMousePosition(x, y int) {
	t.mouseX, t.mouseY = x, y
}

// AppendCharacter adds c to this frame's characters. Non-printable bytes and
// characters that do not fit are dropped.
func (t *Tracker) AppendCharacter(c byte) {
	if !isPrintable(c) {
		return
	}
	if t.nchars >= MaxInputChars-1 {
		return
	}
	t.chars[t.nchars] = c
	t.nchars++
}

// isPrintable reports whether c is a printable ASCII character.
func isPrintable(c byte) bool {
	return c >= 0x20 && c < 0x7f
}
