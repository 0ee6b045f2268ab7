package surface

import (
	"errors"
	"image/color"
	"testing"
)

type recordingBlitter struct {
	calls  int
	width  int
	height int
	frame  []uint32
}

func (b *recordingBlitter) Blit(pixels []uint32, width, height int) {
	b.calls++
	b.width, b.height = width, height
	b.frame = append(b.frame[:0], pixels...)
}

func TestNewZeroFilled(t *testing.T) {
	s, err := New(320, 240)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.Width() != 320 || s.Height() != 240 {
		t.Fatalf("size = %dx%d, want 320x240", s.Width(), s.Height())
	}
	px := s.Pixels()
	if len(px) != 320*240 {
		t.Fatalf("len(Pixels) = %d, want %d", len(px), 320*240)
	}
	for i, p := range px {
		if p != 0 {
			t.Fatalf("pixel %d = %#x, want 0", i, p)
		}
	}
}

func TestNewRejectsInvalidSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -1, -1},
		{"too wide", MaxDimension + 1, 1},
		{"too tall", 1, MaxDimension + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.width, tt.height)
			if !errors.Is(err, ErrAllocation) {
				t.Fatalf("New(%d, %d) error = %v, want ErrAllocation", tt.width, tt.height, err)
			}
			if s != nil {
				t.Fatal("expected nil surface on error")
			}
		})
	}
}

func TestPresentCopiesWholeBuffer(t *testing.T) {
	s, err := New(3, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i := range s.Pixels() {
		s.Pixels()[i] = uint32(i + 1)
	}

	var b recordingBlitter
	s.Present(&b)

	if b.calls != 1 {
		t.Fatalf("Blit calls = %d, want 1", b.calls)
	}
	if b.width != 3 || b.height != 2 {
		t.Fatalf("Blit size = %dx%d, want 3x2", b.width, b.height)
	}
	for i, p := range b.frame {
		if p != uint32(i+1) {
			t.Fatalf("blitted pixel %d = %d, want %d", i, p, i+1)
		}
	}
}

func TestPresentAfterDestroyIsNoop(t *testing.T) {
	s, err := New(4, 4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Destroy()
	s.Destroy()

	var b recordingBlitter
	s.Present(&b)
	s.Present(nil)
	if b.calls != 0 {
		t.Fatalf("Blit calls after Destroy = %d, want 0", b.calls)
	}
	if s.Pixels() != nil {
		t.Fatal("Pixels after Destroy should be nil")
	}

	// Drawing into a destroyed surface must not panic.
	s.Set(1, 1, RGB(1, 2, 3))
	s.Clear(RGB(1, 2, 3))
}

func TestNilSurfaceIsInert(t *testing.T) {
	var s *Surface
	s.Destroy()
	s.Destroy()

	var b recordingBlitter
	s.Present(&b)
	if b.calls != 0 {
		t.Fatalf("Blit calls from nil surface = %d, want 0", b.calls)
	}
}

func TestSetClipsToBounds(t *testing.T) {
	s, err := New(2, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Set(-1, 0, 1)
	s.Set(0, -1, 1)
	s.Set(2, 0, 1)
	s.Set(0, 2, 1)
	s.Set(1, 1, 7)

	want := []uint32{0, 0, 0, 7}
	for i, p := range s.Pixels() {
		if p != want[i] {
			t.Fatalf("pixel %d = %d, want %d", i, p, want[i])
		}
	}
}

func TestSnapshotConvertsNativeLayout(t *testing.T) {
	s, err := New(2, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Set(0, 0, RGB(0x11, 0x22, 0x33))
	s.Set(1, 0, RGB(0xff, 0x00, 0x80))

	img := s.Snapshot()
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0x11, 0x22, 0x33, 0xff}) {
		t.Errorf("pixel (0,0) = %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{0xff, 0x00, 0x80, 0xff}) {
		t.Errorf("pixel (1,0) = %v", got)
	}
}

func TestRGB(t *testing.T) {
	if got := RGB(0x12, 0x34, 0x56); got != 0x00123456 {
		t.Fatalf("RGB = %#x, want 0x123456", got)
	}
}
