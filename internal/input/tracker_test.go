package input

import (
	"strings"
	"testing"
)

func TestKeyGoneDownReportedForOneFrame(t *testing.T) {
	var tr Tracker

	// Frame N: key up.
	tr.Advance()
	if tr.HasKeyGoneDown(KeyA) {
		t.Fatal("HasKeyGoneDown before press")
	}

	// Frame N+1: key pressed during the pump.
	tr.Advance()
	tr.SetKeyDown(KeyA, true)
	if !tr.HasKeyGoneDown(KeyA) {
		t.Fatal("expected HasKeyGoneDown in the frame the key was pressed")
	}
	if !tr.IsKeyDown(KeyA) {
		t.Fatal("expected IsKeyDown while pressed")
	}

	// Frame N+2: still held.
	tr.Advance()
	if tr.HasKeyGoneDown(KeyA) {
		t.Error("HasKeyGoneDown repeated while held")
	}
	if tr.HasKeyGoneUp(KeyA) {
		t.Error("HasKeyGoneUp while held")
	}
	if !tr.IsKeyDown(KeyA) {
		t.Error("expected IsKeyDown while held")
	}
}

func TestHeldKeyReportsNoEdges(t *testing.T) {
	var tr Tracker
	tr.Advance()
	tr.SetKeyDown(KeyLeft, true)

	for frame := 0; frame < 10; frame++ {
		tr.Advance()
		tr.SetKeyDown(KeyLeft, true)
		if tr.HasKeyGoneDown(KeyLeft) || tr.HasKeyGoneUp(KeyLeft) {
			t.Fatalf("frame %d: held key reported an edge", frame)
		}
	}

	tr.Advance()
	tr.SetKeyDown(KeyLeft, false)
	if !tr.HasKeyGoneUp(KeyLeft) {
		t.Fatal("expected HasKeyGoneUp after release")
	}
	if tr.IsKeyDown(KeyLeft) {
		t.Fatal("IsKeyDown after release")
	}

	tr.Advance()
	if tr.HasKeyGoneUp(KeyLeft) {
		t.Fatal("HasKeyGoneUp repeated after release")
	}
}

func TestKeyHeldAtStartupIsNotReportedAsPressed(t *testing.T) {
	var tr Tracker
	tr.SetKeyDown(KeyRightShift, true)
	tr.Advance()

	if tr.HasKeyGoneDown(KeyRightShift) {
		t.Fatal("key held before the first frame reported as gone down")
	}

	tr.SetKeyDown(KeyRightShift, false)
	tr.Advance()
	tr.SetKeyDown(KeyRightShift, true)
	if !tr.HasKeyGoneDown(KeyRightShift) {
		t.Fatal("expected HasKeyGoneDown after release and press")
	}
}

func TestUnknownKeysAreNotQueryable(t *testing.T) {
	var tr Tracker
	for _, k := range []Key{KeyUnknown, KeyCount, -1, 1000} {
		tr.SetKeyDown(k, true)
		if tr.IsKeyDown(k) || tr.HasKeyGoneDown(k) || tr.HasKeyGoneUp(k) {
			t.Errorf("key %v reported state", k)
		}
	}
}

func TestMouseButtonGoneDownExactlyOnce(t *testing.T) {
	var tr Tracker

	tr.Advance()
	if tr.HasMouseButtonGoneDown(ButtonLeft) {
		t.Fatal("HasMouseButtonGoneDown before press")
	}

	tr.Advance()
	tr.SetMouseButtonDown(ButtonLeft, true)
	if !tr.HasMouseButtonGoneDown(ButtonLeft) {
		t.Fatal("expected HasMouseButtonGoneDown after press")
	}

	tr.Advance()
	if tr.HasMouseButtonGoneDown(ButtonLeft) {
		t.Fatal("HasMouseButtonGoneDown repeated with no raw change")
	}
	if !tr.IsMouseButtonDown(ButtonLeft) {
		t.Fatal("expected IsMouseButtonDown while held")
	}
	if tr.IsMouseButtonDown(ButtonRight) {
		t.Fatal("right button reported down")
	}

	tr.Advance()
	tr.SetMouseButtonDown(ButtonLeft, false)
	if !tr.HasMouseButtonGoneUp(ButtonLeft) {
		t.Fatal("expected HasMouseButtonGoneUp after release")
	}
}

func TestMouseButtonsAreIndependent(t *testing.T) {
	var tr Tracker
	tr.Advance()
	tr.SetMouseButtonDown(ButtonRight, true)
	tr.SetMouseButtonDown(ButtonMiddle, true)

	tests := []struct {
		button Button
		down   bool
	}{
		{ButtonLeft, false},
		{ButtonRight, true},
		{ButtonMiddle, true},
		{ButtonCount, false},
		{Button(-1), false},
	}
	for _, tt := range tests {
		if got := tr.IsMouseButtonDown(tt.button); got != tt.down {
			t.Errorf("IsMouseButtonDown(%v) = %v, want %v", tt.button, got, tt.down)
		}
		if got := tr.HasMouseButtonGoneDown(tt.button); got != tt.down {
			t.Errorf("HasMouseButtonGoneDown(%v) = %v, want %v", tt.button, got, tt.down)
		}
	}
}

func TestMousePosition(t *testing.T) {
	var tr Tracker
	tr.SetMousePosition(12, 34)
	tr.Advance()
	if x, y := tr.MousePosition(); x != 12 || y != 34 {
		t.Fatalf("MousePosition = (%d, %d), want (12, 34)", x, y)
	}
}

func TestAppendCharacterIgnoresNonPrintable(t *testing.T) {
	var tr Tracker
	tr.AppendCharacter('h')
	for _, c := range []byte{0x01, '\n', '\t', 0x7f, 0x80, 0xff} {
		tr.AppendCharacter(c)
	}
	tr.AppendCharacter('i')

	if got := tr.InputCharacters(); got != "hi" {
		t.Fatalf("InputCharacters = %q, want %q", got, "hi")
	}
}

func TestIsPrintableBounds(t *testing.T) {
	for c, want := range map[byte]bool{0x1f: false, ' ': true, '~': true, 0x7f: false} {
		if got := isPrintable(c); got != want {
			t.Errorf("isPrintable(%#x) = %v, want %v", c, got, want)
		}
	}
}

func TestAppendCharacterTruncatesAtCapacity(t *testing.T) {
	var tr Tracker
	for i := 0; i < MaxInputChars-2; i++ {
		tr.AppendCharacter('a')
	}
	tr.AppendCharacter('b')
	tr.AppendCharacter('c')
	tr.AppendCharacter('d')

	got := tr.InputCharacters()
	if len(got) != MaxInputChars-1 {
		t.Fatalf("len(InputCharacters) = %d, want %d", len(got), MaxInputChars-1)
	}
	want := strings.Repeat("a", MaxInputChars-2) + "b"
	if got != want {
		t.Fatalf("InputCharacters = %q, want %q", got, want)
	}
}

func TestAdvanceClearsCharacters(t *testing.T) {
	var tr Tracker
	for _, c := range []byte("hello") {
		tr.AppendCharacter(c)
	}
	tr.Advance()
	if got := tr.InputCharacters(); got != "" {
		t.Fatalf("InputCharacters after Advance = %q, want empty", got)
	}

	tr.Advance()
	if got := tr.InputCharacters(); got != "" {
		t.Fatalf("InputCharacters after empty Advance = %q, want empty", got)
	}
}

func TestWasKeyReleasedSeesTapWithinOneFrame(t *testing.T) {
	var tr Tracker

	tr.Advance()
	tr.SetKeyDown(KeyEscape, true)
	tr.SetKeyDown(KeyEscape, false)
	if tr.HasKeyGoneUp(KeyEscape) || tr.HasKeyGoneDown(KeyEscape) {
		t.Fatal("tap within one frame should not produce a state edge")
	}
	if !tr.WasKeyReleased(KeyEscape) {
		t.Fatal("expected WasKeyReleased after press and release in one frame")
	}

	tr.Advance()
	if tr.WasKeyReleased(KeyEscape) {
		t.Fatal("WasKeyReleased survived Advance")
	}
}

func TestWasKeyReleasedAcrossFrames(t *testing.T) {
	var tr Tracker

	tr.Advance()
	tr.SetKeyDown(KeyA, true)
	if tr.WasKeyReleased(KeyA) {
		t.Fatal("WasKeyReleased on press")
	}

	tr.Advance()
	tr.SetKeyDown(KeyA, false)
	tr.SetKeyDown(KeyA, false)
	if !tr.WasKeyReleased(KeyA) || !tr.HasKeyGoneUp(KeyA) {
		t.Fatal("expected release to be recorded")
	}

	// A repeated up report for a key that is already up is not a release.
	tr.Advance()
	tr.SetKeyDown(KeyA, false)
	if tr.WasKeyReleased(KeyA) {
		t.Fatal("WasKeyReleased for a key that was already up")
	}
	if tr.WasKeyReleased(KeyUnknown) || tr.WasKeyReleased(KeyCount) {
		t.Fatal("WasKeyReleased for an unknown key")
	}
}

func TestReleaseAll(t *testing.T) {
	var tr Tracker

	tr.Advance()
	tr.SetKeyDown(KeyEscape, true)
	tr.SetKeyDown(KeyLeft, true)
	tr.SetMouseButtonDown(ButtonRight, true)

	tr.Advance()
	tr.ReleaseAll()
	if tr.IsKeyDown(KeyLeft) || tr.IsMouseButtonDown(ButtonRight) {
		t.Fatal("state still down after ReleaseAll")
	}
	if !tr.HasKeyGoneUp(KeyLeft) || !tr.HasMouseButtonGoneUp(ButtonRight) {
		t.Fatal("expected gone-up edges after ReleaseAll")
	}
	if tr.WasKeyReleased(KeyEscape) {
		t.Fatal("ReleaseAll should not count as a delivered release")
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyA, "A"},
		{KeyZ, "Z"},
		{Key0, "0"},
		{Key9, "9"},
		{KeyLeftShift, "LeftShift"},
		{KeyPeriod, "Period"},
		{KeyCount, "Key(49)"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.key), got, tt.want)
		}
	}
}
