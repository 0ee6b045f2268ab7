package window

import (
	"testing"

	"github.com/tinyrange/pixie/internal/input"
)

func TestKeyMapNativeAndLookup(t *testing.T) {
	m := NewKeyMap(map[input.Key]uint32{
		input.KeyA:     0x41,
		input.KeyLeft:  0x25,
		input.KeyCount: 0x99, // ignored
	})

	if code, ok := m.Native(input.KeyA); !ok || code != 0x41 {
		t.Fatalf("Native(KeyA) = %#x, %v", code, ok)
	}
	if _, ok := m.Native(input.KeyB); ok {
		t.Fatal("Native(KeyB) reported a mapping")
	}
	for _, k := range []input.Key{input.KeyUnknown, input.KeyCount, -5} {
		if code, ok := m.Native(k); ok || code != Unmapped {
			t.Errorf("Native(%v) = %#x, %v; want Unmapped", k, code, ok)
		}
	}

	if k := m.Lookup(0x25); k != input.KeyLeft {
		t.Fatalf("Lookup(0x25) = %v, want Left", k)
	}
	if k := m.Lookup(0x99); k != input.KeyUnknown {
		t.Fatalf("Lookup(0x99) = %v, want Unknown", k)
	}
	if k := m.Lookup(Unmapped); k != input.KeyUnknown {
		t.Fatalf("Lookup(Unmapped) = %v, want Unknown", k)
	}
}

func TestHeadlessPollAppliesQueuedEvents(t *testing.T) {
	h := NewHeadless("test", 4, 4)
	var tr input.Tracker

	h.Queue(
		KeyEvent(input.KeyZ, true),
		ButtonEvent(input.ButtonMiddle, true),
		MoveEvent(3, 2),
		CharEvent('z'),
	)
	if !h.Poll(&tr) {
		t.Fatal("Poll returned false")
	}
	if !tr.IsKeyDown(input.KeyZ) || !tr.IsMouseButtonDown(input.ButtonMiddle) {
		t.Fatal("queued state not applied")
	}
	if x, y := tr.MousePosition(); x != 3 || y != 2 {
		t.Fatalf("MousePosition = (%d, %d)", x, y)
	}
	if got := tr.InputCharacters(); got != "z" {
		t.Fatalf("InputCharacters = %q", got)
	}

	// Events are delivered once.
	tr.Advance()
	h.Poll(&tr)
	if got := tr.InputCharacters(); got != "" {
		t.Fatalf("InputCharacters redelivered: %q", got)
	}
}

func TestHeadlessQuitAndDestroy(t *testing.T) {
	h := NewHeadless("test", 2, 1)
	var tr input.Tracker

	h.Blit([]uint32{1, 2}, 2, 1)
	if h.Blits != 1 || h.Frame[1] != 2 {
		t.Fatalf("Blit not recorded: %d %v", h.Blits, h.Frame)
	}

	h.Quit()
	if h.Poll(&tr) {
		t.Fatal("Poll after Quit returned true")
	}
	if h.Poll(&tr) {
		t.Fatal("Poll stayed true after quit")
	}

	h.Destroy()
	h.Destroy()
	h.Blit([]uint32{3, 4}, 2, 1)
	if h.Blits != 1 {
		t.Fatalf("Blit after Destroy recorded, Blits = %d", h.Blits)
	}
}
