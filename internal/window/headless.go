package window

import "github.com/tinyrange/pixie/internal/input"

type EventKind int

const (
	EventKey EventKind = iota
	EventButton
	EventMove
	EventChar
	EventFocusLost
	EventQuit
)

// Event is a scripted input event for the Headless platform.
type Event struct {
	Kind   EventKind
	Key    input.Key
	Button input.Button
	Down   bool
	X, Y   int
	Char   byte
}

func KeyEvent(key input.Key, down bool) Event {
	return Event{Kind: EventKey, Key: key, Down: down}
}

func ButtonEvent(button input.Button, down bool) Event {
	return Event{Kind: EventButton, Button: button, Down: down}
}

func MoveEvent(x, y int) Event {
	return Event{Kind: EventMove, X: x, Y: y}
}

func CharEvent(c byte) Event {
	return Event{Kind: EventChar, Char: c}
}

func FocusLostEvent() Event {
	return Event{Kind: EventFocusLost}
}

// Headless is an in-memory Platform. Queued events are delivered on the next
// Poll and every Blit is recorded.
type Headless struct {
	Title  string
	Width  int
	Height int

	// Blits counts successful Blit calls; Frame holds a copy of the last one.
	Blits int
	Frame []uint32

	queue     []Event
	quit      bool
	destroyed bool
}

func NewHeadless(title string, width, height int) *Headless {
	return &Headless{Title: title, Width: width, Height: height}
}

// Opener returns an Opener that always hands out h.
func (h *Headless) Opener() Opener {
	return func(title string, width, height int) (Platform, error) {
		h.Title, h.Width, h.Height = title, width, height
		h.destroyed = false
		h.quit = false
		return h, nil
	}
}

// Queue schedules events for the next Poll.
func (h *Headless) Queue(events ...Event) {
	h.queue = append(h.queue, events...)
}

// Quit makes the next Poll report that the window should close.
func (h *Headless) Quit() {
	h.queue = append(h.queue, Event{Kind: EventQuit})
}

func (h *Headless) Destroyed() bool {
	return h.destroyed
}

func (h *Headless) Poll(sink input.Sink) bool {
	if h.destroyed || h.quit {
		return false
	}

	events := h.queue
	h.queue = nil
	for _, ev := range events {
		switch ev.Kind {
		case EventKey:
			sink.SetKeyDown(ev.Key, ev.Down)
		case EventButton:
			sink.SetMouseButtonDown(ev.Button, ev.Down)
		case EventMove:
			sink.SetMousePosition(ev.X, ev.Y)
		case EventChar:
			sink.AppendCharacter(ev.Char)
		case EventFocusLost:
			sink.ReleaseAll()
		case EventQuit:
			h.quit = true
		}
	}
	return !h.quit
}

func (h *Headless) Blit(pixels []uint32, width, height int) {
	if h.destroyed {
		return
	}
	h.Blits++
	h.Frame = append(h.Frame[:0], pixels[:width*height]...)
}

func (h *Headless) Destroy() {
	h.destroyed = true
	h.queue = nil
}
