// Package window is the platform layer: it opens a single native window,
// pumps its event queue into an input.Sink and blits pixel buffers to it.
//
// Every backend must be driven from the goroutine that created it. New locks
// that goroutine to its OS thread until Destroy.
package window

import (
	"errors"

	"github.com/tinyrange/pixie/internal/input"
)

var ErrUnsupported = errors.New("windowing is not supported on this platform")

type Platform interface {
	// Poll drains pending events without blocking and writes the resulting
	// raw input state into sink. It returns false once the window has been
	// asked to quit or was destroyed.
	Poll(sink input.Sink) bool

	// Blit copies a top-down 32-bit buffer into the client area. It does
	// nothing once the window is destroyed.
	Blit(pixels []uint32, width, height int)

	// Destroy closes the native window. It is safe to call more than once.
	Destroy()
}

// Opener creates a platform window with a client area of width x height.
type Opener func(title string, width, height int) (Platform, error)

var _ Opener = New
