//go:build linux

package window

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/tinyrange/pixie/internal/input"
)

const (
	zPixmap = 2

	exposureMask        = 1 << 15
	structureNotifyMask = 1 << 17
	keyPressMask        = 1 << 0
	keyReleaseMask      = 1 << 1
	buttonPressMask     = 1 << 2
	buttonReleaseMask   = 1 << 3
	pointerMotionMask   = 1 << 6
	focusChangeMask     = 1 << 21

	keyPress      = 2
	keyRelease    = 3
	buttonPress   = 4
	buttonRelease = 5
	motionNotify  = 6
	focusOut      = 10
	destroyNotify = 17
	clientMessage = 33

	// Offset of the data pointer inside XImage.
	ximageDataOffset = 16
)

type xclientMessage struct {
	Type        int32
	Serial      uint64
	SendEvent   int32
	Display     uintptr
	Window      uintptr
	MessageType uintptr
	Format      int32
	Data        [5]uint64
}

// xkeyEvent mirrors XKeyEvent; XButtonEvent and XMotionEvent share the
// layout up to Keycode, which holds the button number for button events.
type xkeyEvent struct {
	Type       int32
	Serial     uint64
	SendEvent  int32
	Display    uintptr
	Window     uintptr
	Root       uintptr
	Subwindow  uintptr
	Time       uint64
	X, Y       int32
	XRoot      int32
	YRoot      int32
	State      uint32
	Keycode    uint32
	SameScreen int32
}

var (
	x11Once sync.Once
	x11Err  error

	xOpenDisplay        func(*byte) uintptr
	xCloseDisplay       func(uintptr) int32
	xDefaultScreen      func(uintptr) int32
	xRootWindow         func(uintptr, int32) uintptr
	xDefaultVisual      func(uintptr, int32) uintptr
	xDefaultDepth       func(uintptr, int32) int32
	xDefaultGC          func(uintptr, int32) uintptr
	xBlackPixel         func(uintptr, int32) uint64
	xCreateSimpleWindow func(uintptr, uintptr, int32, int32, uint32, uint32, uint32, uint64, uint64) uintptr
	xDestroyWindow      func(uintptr, uintptr) int32
	xMapWindow          func(uintptr, uintptr) int32
	xStoreName          func(uintptr, uintptr, *byte) int32
	xInternAtom         func(uintptr, *byte, int32) uintptr
	xSetWMProtocols     func(uintptr, uintptr, *uintptr, int32) int32
	xSelectInput        func(uintptr, uintptr, int64) int32
	xPending            func(uintptr) int32
	xNextEvent          func(uintptr, unsafe.Pointer) int32
	xPeekEvent          func(uintptr, unsafe.Pointer) int32
	xLookupKeysym       func(unsafe.Pointer, int32) uintptr
	xLookupString       func(unsafe.Pointer, *byte, int32, *uintptr, unsafe.Pointer) int32
	xCreateImage        func(uintptr, uintptr, uint32, int32, int32, unsafe.Pointer, uint32, uint32, int32, int32) uintptr
	xPutImage           func(uintptr, uintptr, uintptr, uintptr, int32, int32, int32, int32, uint32, uint32) int32
	xFree               func(uintptr) int32
	xFlush              func(uintptr) int32

	xkbSetDetectableAutoRepeat func(uintptr, int32, *int32) int32
)

// Keysyms from X11/keysymdef.h. Letters use the unshifted (lowercase) form
// returned by XLookupKeysym index 0.
var x11Keys = NewKeyMap(map[input.Key]uint32{
	input.KeyA: 'a', input.KeyB: 'b', input.KeyC: 'c', input.KeyD: 'd',
	input.KeyE: 'e', input.KeyF: 'f', input.KeyG: 'g', input.KeyH: 'h',
	input.KeyI: 'i', input.KeyJ: 'j', input.KeyK: 'k', input.KeyL: 'l',
	input.KeyM: 'm', input.KeyN: 'n', input.KeyO: 'o', input.KeyP: 'p',
	input.KeyQ: 'q', input.KeyR: 'r', input.KeyS: 's', input.KeyT: 't',
	input.KeyU: 'u', input.KeyV: 'v', input.KeyW: 'w', input.KeyX: 'x',
	input.KeyY: 'y', input.KeyZ: 'z',

	input.Key0: '0', input.Key1: '1', input.Key2: '2', input.Key3: '3',
	input.Key4: '4', input.Key5: '5', input.Key6: '6', input.Key7: '7',
	input.Key8: '8', input.Key9: '9',

	input.KeyLeftShift:  0xffe1,
	input.KeyRightShift: 0xffe2,
	input.KeyEscape:     0xff1b,
	input.KeyBackspace:  0xff08,
	input.KeyDelete:     0xffff,
	input.KeyUp:         0xff52,
	input.KeyDown:       0xff54,
	input.KeyLeft:       0xff51,
	input.KeyRight:      0xff53,
	input.KeyHome:       0xff50,
	input.KeyEnd:        0xff57,
	input.KeyPeriod:     '.',
})

// x11Button maps X button numbers to input buttons.
func x11Button(n uint32) input.Button {
	switch n {
	case 1:
		return input.ButtonLeft
	case 2:
		return input.ButtonMiddle
	case 3:
		return input.ButtonRight
	default:
		return input.ButtonCount
	}
}

type x11Window struct {
	display  uintptr
	window   uintptr
	gc       uintptr
	image    uintptr
	wmDelete uintptr
	running  bool
	pinner   runtime.Pinner

	// detectableRepeat is set when the server suppresses the release half of
	// auto-repeat pairs.
	detectableRepeat bool
}

func New(title string, width, height int) (Platform, error) {
	runtime.LockOSThread()
	if err := ensureLibs(); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	dpy := xOpenDisplay(nil)
	if dpy == 0 {
		runtime.UnlockOSThread()
		return nil, errors.New("XOpenDisplay failed")
	}

	screen := xDefaultScreen(dpy)
	root := xRootWindow(dpy, screen)
	depth := xDefaultDepth(dpy, screen)
	if depth != 24 && depth != 32 {
		xCloseDisplay(dpy)
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("unsupported default visual depth %d", depth)
	}

	black := xBlackPixel(dpy, screen)
	win := xCreateSimpleWindow(dpy, root, 0, 0, uint32(width), uint32(height), 0, black, black)
	if win == 0 {
		xCloseDisplay(dpy)
		runtime.UnlockOSThread()
		return nil, errors.New("XCreateSimpleWindow failed")
	}
	xSelectInput(dpy, win, exposureMask|structureNotifyMask|keyPressMask|keyReleaseMask|
		buttonPressMask|buttonReleaseMask|pointerMotionMask|focusChangeMask)

	var supported int32
	detectable := xkbSetDetectableAutoRepeat(dpy, 1, &supported) != 0 && supported != 0

	titleBytes := append([]byte(title), 0)
	xStoreName(dpy, win, &titleBytes[0])

	wmDelete := xInternAtom(dpy, cString("WM_DELETE_WINDOW"), 0)
	xSetWMProtocols(dpy, win, &wmDelete, 1)

	// The image has no backing store of its own: Blit points it at the
	// caller's pixels for the duration of XPutImage.
	img := xCreateImage(dpy, xDefaultVisual(dpy, screen), uint32(depth), zPixmap, 0, nil,
		uint32(width), uint32(height), 32, int32(width*4))
	if img == 0 {
		xDestroyWindow(dpy, win)
		xCloseDisplay(dpy)
		runtime.UnlockOSThread()
		return nil, errors.New("XCreateImage failed")
	}

	xMapWindow(dpy, win)
	xFlush(dpy)

	return &x11Window{
		display:  dpy,
		window:   win,
		gc:       xDefaultGC(dpy, screen),
		image:    img,
		wmDelete: wmDelete,
		running:  true,

		detectableRepeat: detectable,
	}, nil
}

func (w *x11Window) Destroy() {
	if w.image != 0 {
		xFree(w.image)
		w.image = 0
	}
	if w.window != 0 {
		xDestroyWindow(w.display, w.window)
		w.window = 0
	}
	if w.display != 0 {
		xCloseDisplay(w.display)
		w.display = 0
		runtime.UnlockOSThread()
	}
	w.running = false
}

func (w *x11Window) Poll(sink input.Sink) bool {
	if !w.running {
		return false
	}

	for xPending(w.display) > 0 {
		var ev [192]byte
		xNextEvent(w.display, unsafe.Pointer(&ev[0]))
		etype := *(*int32)(unsafe.Pointer(&ev[0]))
		switch etype {
		case keyPress, keyRelease:
			if etype == keyRelease && !w.detectableRepeat && w.releaseIsRepeat(&ev) {
				continue
			}
			w.handleKey(unsafe.Pointer(&ev[0]), etype == keyPress, sink)
		case buttonPress, buttonRelease:
			be := (*xkeyEvent)(unsafe.Pointer(&ev[0]))
			sink.SetMousePosition(int(be.X), int(be.Y))
			sink.SetMouseButtonDown(x11Button(be.Keycode), etype == buttonPress)
		case motionNotify:
			me := (*xkeyEvent)(unsafe.Pointer(&ev[0]))
			sink.SetMousePosition(int(me.X), int(me.Y))
		case focusOut:
			// Releases that happen in another window are never delivered here.
			sink.ReleaseAll()
		case clientMessage:
			cm := (*xclientMessage)(unsafe.Pointer(&ev[0]))
			if cm.Format == 32 && cm.Data[0] == uint64(w.wmDelete) {
				w.running = false
			}
		case destroyNotify:
			w.running = false
			w.window = 0
		}
	}
	return w.running
}

// releaseIsRepeat reports whether the release in ev is the first half of an
// auto-repeat pair. The matching press is already queued when it is.
func (w *x11Window) releaseIsRepeat(ev *[192]byte) bool {
	if xPending(w.display) == 0 {
		return false
	}
	var next [192]byte
	xPeekEvent(w.display, unsafe.Pointer(&next[0]))
	return isAutoRepeat((*xkeyEvent)(unsafe.Pointer(&ev[0])), (*xkeyEvent)(unsafe.Pointer(&next[0])))
}

// isAutoRepeat reports whether next is the press that X11 sends straight after
// release when a held key repeats.
func isAutoRepeat(release, next *xkeyEvent) bool {
	return release.Type == keyRelease &&
		next.Type == keyPress &&
		next.Keycode == release.Keycode &&
		next.Time == release.Time
}

func (w *x11Window) handleKey(ev unsafe.Pointer, down bool, sink input.Sink) {
	keysym := xLookupKeysym(ev, 0)
	sink.SetKeyDown(x11Keys.Lookup(uint32(keysym)), down)

	if !down {
		return
	}
	var buf [8]byte
	var sym uintptr
	n := xLookupString(ev, &buf[0], int32(len(buf)), &sym, nil)
	for _, c := range buf[:max(0, min(int(n), len(buf)))] {
		sink.AppendCharacter(c)
	}
}

func (w *x11Window) Blit(pixels []uint32, width, height int) {
	if !w.running || w.window == 0 || w.image == 0 || len(pixels) < width*height || width <= 0 {
		return
	}

	data := unsafe.Pointer(&pixels[0])
	w.pinner.Pin(data)
	defer w.pinner.Unpin()

	slot := (*unsafe.Pointer)(unsafe.Pointer(w.image + ximageDataOffset))
	*slot = data
	xPutImage(w.display, w.window, w.gc, w.image, 0, 0, 0, 0, uint32(width), uint32(height))
	xFlush(w.display)
	*slot = nil
}

func ensureLibs() error {
	x11Once.Do(func() {
		lib, err := purego.Dlopen("libX11.so.6", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err != nil {
			x11Err = fmt.Errorf("load libX11: %w", err)
			return
		}
		registerX11(lib)
	})
	return x11Err
}

func registerX11(lib uintptr) {
	purego.RegisterLibFunc(&xOpenDisplay, lib, "XOpenDisplay")
	purego.RegisterLibFunc(&xCloseDisplay, lib, "XCloseDisplay")
	purego.RegisterLibFunc(&xDefaultScreen, lib, "XDefaultScreen")
	purego.RegisterLibFunc(&xRootWindow, lib, "XRootWindow")
	purego.RegisterLibFunc(&xDefaultVisual, lib, "XDefaultVisual")
	purego.RegisterLibFunc(&xDefaultDepth, lib, "XDefaultDepth")
	purego.RegisterLibFunc(&xDefaultGC, lib, "XDefaultGC")
	purego.RegisterLibFunc(&xBlackPixel, lib, "XBlackPixel")
	purego.RegisterLibFunc(&xCreateSimpleWindow, lib, "XCreateSimpleWindow")
	purego.RegisterLibFunc(&xDestroyWindow, lib, "XDestroyWindow")
	purego.RegisterLibFunc(&xMapWindow, lib, "XMapWindow")
	purego.RegisterLibFunc(&xStoreName, lib, "XStoreName")
	purego.RegisterLibFunc(&xInternAtom, lib, "XInternAtom")
	purego.RegisterLibFunc(&xSetWMProtocols, lib, "XSetWMProtocols")
	purego.RegisterLibFunc(&xSelectInput, lib, "XSelectInput")
	purego.RegisterLibFunc(&xPending, lib, "XPending")
	purego.RegisterLibFunc(&xNextEvent, lib, "XNextEvent")
	purego.RegisterLibFunc(&xPeekEvent, lib, "XPeekEvent")
	purego.RegisterLibFunc(&xLookupKeysym, lib, "XLookupKeysym")
	purego.RegisterLibFunc(&xLookupString, lib, "XLookupString")
	purego.RegisterLibFunc(&xCreateImage, lib, "XCreateImage")
	purego.RegisterLibFunc(&xPutImage, lib, "XPutImage")
	purego.RegisterLibFunc(&xFree, lib, "XFree")
	purego.RegisterLibFunc(&xFlush, lib, "XFlush")
	purego.RegisterLibFunc(&xkbSetDetectableAutoRepeat, lib, "XkbSetDetectableAutoRepeat")
}

func cString(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}
