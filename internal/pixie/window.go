// Package pixie ties a platform window, a pixel surface and an input tracker
// into a single frame loop.
//
// A Window is driven from one goroutine:
//
//	w := pixie.New()
//	if err := w.Open("Demo", 320, 240); err != nil { ... }
//	for w.Update() {
//		// query input, draw into w.Pixels()
//	}
//
// Each Update starts a new input frame, pumps platform events and presents
// the pixels drawn since the previous call.
package pixie

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/tinyrange/pixie/internal/input"
	"github.com/tinyrange/pixie/internal/surface"
	"github.com/tinyrange/pixie/internal/window"
)

var (
	ErrWindowCreation = errors.New("window creation failed")
	ErrAlreadyOpen    = errors.New("window already open")

	// ErrAllocation is returned by Open when the pixel buffer cannot be made.
	ErrAllocation = surface.ErrAllocation
)

type Window struct {
	log           *slog.Logger
	opener        window.Opener
	closeOnEscape bool

	platform window.Platform
	surface  *surface.Surface
	input    input.Tracker

	lastUpdate time.Time
	delta      time.Duration
}

type Option func(*Window)

func WithLogger(log *slog.Logger) Option {
	return func(w *Window) { w.log = log }
}

// WithPlatform replaces the native window backend.
func WithPlatform(open window.Opener) Option {
	return func(w *Window) { w.opener = open }
}

// WithCloseOnEscape controls whether releasing Escape closes the window.
// It is enabled by default.
func WithCloseOnEscape(enabled bool) Option {
	return func(w *Window) { w.closeOnEscape = enabled }
}

func New(opts ...Option) *Window {
	w := &Window{
		log:           slog.Default(),
		opener:        window.New,
		closeOnEscape: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open allocates the pixel buffer and opens the native window. On failure
// nothing is retained.
func (w *Window) Open(title string, width, height int) error {
	if w.platform != nil {
		return ErrAlreadyOpen
	}

	s, err := surface.New(width, height)
	if err != nil {
		return err
	}

	p, err := w.opener(title, width, height)
	if err != nil {
		s.Destroy()
		return fmt.Errorf("%w: %w", ErrWindowCreation, err)
	}

	w.platform = p
	w.surface = s
	w.input = input.Tracker{}
	w.lastUpdate = time.Now()
	w.delta = 0

	w.log.Debug("window opened", "title", title, "width", width, "height", height)
	return nil
}

// IsOpen reports whether the window is between Open and Close.
func (w *Window) IsOpen() bool {
	return w.platform != nil
}

// Update runs one frame: it starts a new input frame, pumps platform events
// and presents the pixel buffer. It returns false once the window has closed.
func (w *Window) Update() bool {
	if w.platform == nil {
		return false
	}

	now := time.Now()
	w.delta = now.Sub(w.lastUpdate)
	w.lastUpdate = now

	w.input.Advance()
	if !w.platform.Poll(&w.input) {
		w.log.Info("window quit requested")
		w.Close()
		return false
	}
	if w.closeOnEscape && w.input.WasKeyReleased(input.KeyEscape) {
		w.log.Info("escape released, closing window")
		w.Close()
		return false
	}

	w.Present()
	return true
}

// Present pushes the pixel buffer to the window. It does nothing once the
// window is closed.
func (w *Window) Present() {
	if w.platform == nil {
		return
	}
	w.surface.Present(w.platform)
}

// Close destroys the native window and releases the pixel buffer. It is safe
// to call more than once.
func (w *Window) Close() {
	if w.platform == nil {
		return
	}
	w.platform.Destroy()
	w.surface.Destroy()
	w.platform = nil
	w.surface = nil
	w.log.Debug("window closed")
}

// Loop calls step and then Update until the window closes or step fails.
// The window is closed on return.
func (w *Window) Loop(step func(w *Window) error) error {
	defer w.Close()

	for w.IsOpen() {
		if err := step(w); err != nil {
			return err
		}
		if !w.Update() {
			break
		}
	}
	return nil
}

// Pixels returns the pixel buffer, or nil when the window is closed.
func (w *Window) Pixels() []uint32 {
	if w.surface == nil {
		return nil
	}
	return w.surface.Pixels()
}

// Surface returns the pixel surface, or nil when the window is closed.
func (w *Window) Surface() *surface.Surface {
	return w.surface
}

func (w *Window) Width() int {
	if w.surface == nil {
		return 0
	}
	return w.surface.Width()
}

func (w *Window) Height() int {
	if w.surface == nil {
		return 0
	}
	return w.surface.Height()
}

// Snapshot copies the pixel buffer into an image.
func (w *Window) Snapshot() image.Image {
	if w.surface == nil {
		return image.NewRGBA(image.Rectangle{})
	}
	return w.surface.Snapshot()
}

// DeltaTime returns the seconds elapsed between the two most recent Update
// calls. The first Update measures from Open.
func (w *Window) DeltaTime() float32 {
	return float32(w.delta.Seconds())
}

func (w *Window) IsKeyDown(key input.Key) bool      { return w.input.IsKeyDown(key) }
func (w *Window) HasKeyGoneDown(key input.Key) bool { return w.input.HasKeyGoneDown(key) }
func (w *Window) HasKeyGoneUp(key input.Key) bool   { return w.input.HasKeyGoneUp(key) }

func (w *Window) IsMouseButtonDown(b input.Button) bool      { return w.input.IsMouseButtonDown(b) }
func (w *Window) HasMouseButtonGoneDown(b input.Button) bool { return w.input.HasMouseButtonGoneDown(b) }
func (w *Window) HasMouseButtonGoneUp(b input.Button) bool   { return w.input.HasMouseButtonGoneUp(b) }

// MousePosition returns the cursor in client coordinates for this frame.
func (w *Window) MousePosition() (x, y int) {
	return w.input.MousePosition()
}

// InputCharacters returns the printable characters typed this frame.
func (w *Window) InputCharacters() string {
	return w.input.InputCharacters()
}
