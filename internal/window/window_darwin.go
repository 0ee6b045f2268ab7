//go:build darwin

package window

import (
	"errors"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"

	"github.com/tinyrange/pixie/internal/input"
)

// NS geometry mirrors (keep alignment explicit).
type NSPoint struct {
	X float64
	Y float64
}

type NSSize struct {
	W float64
	H float64
}

type NSRect struct {
	Origin NSPoint
	Size   NSSize
}

// Cocoa constants (subset).
const (
	nsApplicationActivationPolicyRegular = 0

	nsWindowStyleTitled      = 1 << 0
	nsWindowStyleClosable    = 1 << 1
	nsWindowStyleMiniaturize = 1 << 2

	nsBackingStoreBuffered = 2

	nsEventMaskAny = ^uint(0)

	nsEventLeftMouseDown  = 1
	nsEventLeftMouseUp    = 2
	nsEventRightMouseDown = 3
	nsEventRightMouseUp   = 4
	nsEventKeyDown        = 10
	nsEventKeyUp          = 11
	nsEventFlagsChanged   = 12
	nsEventOtherMouseDown = 25
	nsEventOtherMouseUp   = 26

	// Device-dependent modifier bits from IOKit's NX_DEVICE*KEYMASK.
	nxDeviceLeftShift  = 0x02
	nxDeviceRightShift = 0x04

	kcgImageAlphaNoneSkipFirst = 6
	kcgBitmapByteOrder32Little = 2 << 12
)

// Virtual key codes from HIToolbox Events.h.
var macKeys = NewKeyMap(map[input.Key]uint32{
	input.KeyA: 0x00, input.KeyS: 0x01, input.KeyD: 0x02, input.KeyF: 0x03,
	input.KeyH: 0x04, input.KeyG: 0x05, input.KeyZ: 0x06, input.KeyX: 0x07,
	input.KeyC: 0x08, input.KeyV: 0x09, input.KeyB: 0x0B, input.KeyQ: 0x0C,
	input.KeyW: 0x0D, input.KeyE: 0x0E, input.KeyR: 0x0F, input.KeyY: 0x10,
	input.KeyT: 0x11, input.KeyO: 0x1F, input.KeyU: 0x20, input.KeyI: 0x22,
	input.KeyP: 0x23, input.KeyL: 0x25, input.KeyJ: 0x26, input.KeyK: 0x28,
	input.KeyN: 0x2D, input.KeyM: 0x2E,

	input.Key1: 0x12, input.Key2: 0x13, input.Key3: 0x14, input.Key4: 0x15,
	input.Key6: 0x16, input.Key5: 0x17, input.Key9: 0x19, input.Key7: 0x1A,
	input.Key8: 0x1C, input.Key0: 0x1D,

	input.KeyPeriod:     0x2F,
	input.KeyBackspace:  0x33,
	input.KeyEscape:     0x35,
	input.KeyLeftShift:  0x38,
	input.KeyRightShift: 0x3C,
	input.KeyHome:       0x73,
	input.KeyDelete:     0x75,
	input.KeyEnd:        0x77,
	input.KeyLeft:       0x7B,
	input.KeyRight:      0x7C,
	input.KeyDown:       0x7D,
	input.KeyUp:         0x7E,
})

// Cocoa exposes objects as pointers (Objective-C id).
type Cocoa struct {
	app     objc.ID
	window  objc.ID
	view    objc.ID
	layer   objc.ID
	pool    objc.ID
	running bool
}

var (
	initOnce sync.Once
	initErr  error

	// CoreFoundation.
	cfRunLoopRunInMode func(uintptr, float64, bool) int32
	cfDefaultMode      uintptr
	cfDataCreate       func(uintptr, unsafe.Pointer, int) uintptr
	cfRelease          func(uintptr)

	// CoreGraphics.
	cgColorSpaceCreateDeviceRGB func() uintptr
	cgDataProviderCreateWithCF  func(uintptr) uintptr
	cgDataProviderRelease       func(uintptr)
	cgImageCreate               func(uintptr, uintptr, uintptr, uintptr, uintptr, uintptr, uint32, uintptr, uintptr, bool, int32) uintptr
	cgImageRelease              func(uintptr)
	deviceRGB                   uintptr

	// Cached selectors.
	selAlloc                 objc.SEL
	selInit                  objc.SEL
	selRelease               objc.SEL
	selClose                 objc.SEL
	selSharedApplication     objc.SEL
	selNextEventMatchingMask objc.SEL
	selSetActivationPolicy   objc.SEL
	selActivateIgnoring      objc.SEL
	selFinishLaunching       objc.SEL
	selStringWithUTF8String  objc.SEL
	selInitWithContentRect   objc.SEL
	selMakeKeyAndOrderFront  objc.SEL
	selSetTitle              objc.SEL
	selSetAcceptsMouseMoved  objc.SEL
	selSetReleasedWhenClosed objc.SEL
	selCenter                objc.SEL
	selContentView           objc.SEL
	selBounds                objc.SEL
	selMouseLocationOutside  objc.SEL
	selIsVisible             objc.SEL
	selIsKeyWindow           objc.SEL
	selSendEvent             objc.SEL
	selSetWantsLayer         objc.SEL
	selLayer                 objc.SEL
	selSetContents           objc.SEL
	selType                  objc.SEL
	selKeyCode               objc.SEL
	selCharacters            objc.SEL
	selUTF8String            objc.SEL
	selModifierFlags         objc.SEL
	selButtonNumber          objc.SEL
)

// New boots Cocoa and opens a layer-backed window, keeping control of the
// run loop in Go.
func New(title string, width, height int) (Platform, error) {
	runtime.LockOSThread()
	if err := ensureRuntime(); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	c := &Cocoa{running: true}
	if err := c.bootstrapApp(); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	if err := c.makeWindow(title, width, height); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

// Poll pumps Cocoa events. Returns false when the window is no longer visible.
func (c *Cocoa) Poll(sink input.Sink) bool {
	if !c.running {
		return false
	}

	// Drain one slice of the run loop without blocking and pump pending NSEvents.
	cfRunLoopRunInMode(cfDefaultMode, 0, true)
	for {
		ev := objc.Send[objc.ID](c.app, selNextEventMatchingMask, nsEventMaskAny, objc.ID(0), objc.ID(cfDefaultMode), true)
		if ev == 0 {
			break
		}
		if c.handleEvent(ev, sink) {
			continue
		}
		c.app.Send(selSendEvent, ev)
	}

	if !objc.Send[bool](c.window, selIsVisible) {
		c.running = false
		return false
	}
	// Key-up events go to whichever window has focus.
	if !objc.Send[bool](c.window, selIsKeyWindow) {
		sink.ReleaseAll()
	}

	sink.SetMousePosition(c.cursor())
	return true
}

// handleEvent records input from ev. It returns true for keyboard events,
// which are consumed so AppKit does not beep at an unhandled key.
func (c *Cocoa) handleEvent(ev objc.ID, sink input.Sink) bool {
	etype := objc.Send[uint64](ev, selType)
	switch etype {
	case nsEventKeyDown:
		code := uint16(objc.Send[uint64](ev, selKeyCode))
		sink.SetKeyDown(macKeys.Lookup(uint32(code)), true)
		for _, b := range []byte(nsStringToGo(ev.Send(selCharacters))) {
			sink.AppendCharacter(b)
		}
		return true
	case nsEventKeyUp:
		code := uint16(objc.Send[uint64](ev, selKeyCode))
		sink.SetKeyDown(macKeys.Lookup(uint32(code)), false)
		return true
	case nsEventFlagsChanged:
		flags := objc.Send[uint64](ev, selModifierFlags)
		sink.SetKeyDown(input.KeyLeftShift, flags&nxDeviceLeftShift != 0)
		sink.SetKeyDown(input.KeyRightShift, flags&nxDeviceRightShift != 0)
		return true
	case nsEventLeftMouseDown:
		sink.SetMouseButtonDown(input.ButtonLeft, true)
	case nsEventLeftMouseUp:
		sink.SetMouseButtonDown(input.ButtonLeft, false)
	case nsEventRightMouseDown:
		sink.SetMouseButtonDown(input.ButtonRight, true)
	case nsEventRightMouseUp:
		sink.SetMouseButtonDown(input.ButtonRight, false)
	case nsEventOtherMouseDown, nsEventOtherMouseUp:
		if objc.Send[uint64](ev, selButtonNumber) == 2 {
			sink.SetMouseButtonDown(input.ButtonMiddle, etype == nsEventOtherMouseDown)
		}
	}
	return false
}

// Blit wraps a copy of pixels in a CGImage and makes it the layer contents.
func (c *Cocoa) Blit(pixels []uint32, width, height int) {
	if !c.running || c.layer == 0 || len(pixels) < width*height || width <= 0 || height <= 0 {
		return
	}

	data := cfDataCreate(0, unsafe.Pointer(&pixels[0]), width*height*4)
	if data == 0 {
		return
	}
	defer cfRelease(data)

	provider := cgDataProviderCreateWithCF(data)
	if provider == 0 {
		return
	}
	defer cgDataProviderRelease(provider)

	img := cgImageCreate(
		uintptr(width), uintptr(height),
		8, 32, uintptr(width*4),
		deviceRGB,
		kcgImageAlphaNoneSkipFirst|kcgBitmapByteOrder32Little,
		provider, 0, false, 0,
	)
	if img == 0 {
		return
	}
	defer cgImageRelease(img)

	c.layer.Send(selSetContents, objc.ID(img))
}

// Destroy tears down the window.
func (c *Cocoa) Destroy() {
	if c.window != 0 {
		c.window.Send(selClose)
		c.window.Send(selRelease)
		c.window = 0
		c.view = 0
		c.layer = 0
	}
	if c.pool != 0 {
		c.pool.Send(selRelease)
		c.pool = 0
		runtime.UnlockOSThread()
	}
	c.running = false
}

func (c *Cocoa) bootstrapApp() error {
	app := objc.ID(objc.GetClass("NSApplication")).Send(selSharedApplication)
	if app == 0 {
		return errors.New("nsapplication unavailable")
	}
	app.Send(selSetActivationPolicy, nsApplicationActivationPolicyRegular)
	app.Send(selFinishLaunching)
	app.Send(selActivateIgnoring, true)

	pool := objc.ID(objc.GetClass("NSAutoreleasePool")).Send(selAlloc)
	pool = pool.Send(selInit)

	c.app = app
	c.pool = pool
	return nil
}

func (c *Cocoa) makeWindow(title string, width, height int) error {
	frame := NSRect{
		Origin: NSPoint{X: 100, Y: 100},
		Size:   NSSize{W: float64(width), H: float64(height)},
	}

	style := uint(nsWindowStyleTitled | nsWindowStyleClosable | nsWindowStyleMiniaturize)
	backing := uint(nsBackingStoreBuffered)

	winClass := objc.GetClass("NSWindow")
	win := objc.ID(winClass).Send(selAlloc)
	win = win.Send(selInitWithContentRect, frame, style, backing, false)
	if win == 0 {
		return errors.New("failed to create nswindow")
	}
	c.window = win

	win.Send(selCenter)
	win.Send(selSetAcceptsMouseMoved, true)
	win.Send(selSetReleasedWhenClosed, false)
	win.Send(selSetTitle, nsString(title))

	c.view = win.Send(selContentView)
	if c.view == 0 {
		return errors.New("window missing content view")
	}
	c.view.Send(selSetWantsLayer, true)
	c.layer = c.view.Send(selLayer)
	if c.layer == 0 {
		return errors.New("content view has no layer")
	}

	win.Send(selMakeKeyAndOrderFront, objc.ID(0))
	return nil
}

// cursor returns the mouse in view points with a top-left origin.
func (c *Cocoa) cursor() (int, int) {
	if c.window == 0 || c.view == 0 {
		return 0, 0
	}
	pos := objc.Send[NSPoint](c.window, selMouseLocationOutside)
	bounds := objc.Send[NSRect](c.view, selBounds)
	return int(pos.X), int(bounds.Size.H - pos.Y)
}

func ensureRuntime() error {
	initOnce.Do(func() {
		if err := loadFrameworks(); err != nil {
			initErr = err
			return
		}
		loadSelectors()
	})
	return initErr
}

func loadFrameworks() error {
	// Load libobjc and AppKit so the symbols are available.
	if _, err := purego.Dlopen("/usr/lib/libobjc.A.dylib", purego.RTLD_GLOBAL); err != nil {
		return err
	}
	if _, err := purego.Dlopen("/System/Library/Frameworks/AppKit.framework/AppKit", purego.RTLD_GLOBAL); err != nil {
		return err
	}
	cf, err := purego.Dlopen("/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation", purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}
	cg, err := purego.Dlopen("/System/Library/Frameworks/CoreGraphics.framework/CoreGraphics", purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}

	purego.RegisterLibFunc(&cfRunLoopRunInMode, cf, "CFRunLoopRunInMode")
	purego.RegisterLibFunc(&cfDataCreate, cf, "CFDataCreate")
	purego.RegisterLibFunc(&cfRelease, cf, "CFRelease")
	ptr, err := purego.Dlsym(cf, "kCFRunLoopDefaultMode")
	if err != nil {
		return err
	}
	// Dlsym returns the address of the CFStringRef variable; read its value.
	cfDefaultMode = *(*uintptr)(unsafe.Pointer(ptr))

	purego.RegisterLibFunc(&cgColorSpaceCreateDeviceRGB, cg, "CGColorSpaceCreateDeviceRGB")
	purego.RegisterLibFunc(&cgDataProviderCreateWithCF, cg, "CGDataProviderCreateWithCFData")
	purego.RegisterLibFunc(&cgDataProviderRelease, cg, "CGDataProviderRelease")
	purego.RegisterLibFunc(&cgImageCreate, cg, "CGImageCreate")
	purego.RegisterLibFunc(&cgImageRelease, cg, "CGImageRelease")

	deviceRGB = cgColorSpaceCreateDeviceRGB()
	if deviceRGB == 0 {
		return errors.New("CGColorSpaceCreateDeviceRGB failed")
	}
	return nil
}

func loadSelectors() {
	selAlloc = objc.RegisterName("alloc")
	selInit = objc.RegisterName("init")
	selRelease = objc.RegisterName("release")
	selClose = objc.RegisterName("close")
	selSharedApplication = objc.RegisterName("sharedApplication")
	selNextEventMatchingMask = objc.RegisterName("nextEventMatchingMask:untilDate:inMode:dequeue:")
	selSetActivationPolicy = objc.RegisterName("setActivationPolicy:")
	selActivateIgnoring = objc.RegisterName("activateIgnoringOtherApps:")
	selFinishLaunching = objc.RegisterName("finishLaunching")
	selStringWithUTF8String = objc.RegisterName("stringWithUTF8String:")
	selInitWithContentRect = objc.RegisterName("initWithContentRect:styleMask:backing:defer:")
	selMakeKeyAndOrderFront = objc.RegisterName("makeKeyAndOrderFront:")
	selSetTitle = objc.RegisterName("setTitle:")
	selSetAcceptsMouseMoved = objc.RegisterName("setAcceptsMouseMovedEvents:")
	selSetReleasedWhenClosed = objc.RegisterName("setReleasedWhenClosed:")
	selCenter = objc.RegisterName("center")
	selContentView = objc.RegisterName("contentView")
	selBounds = objc.RegisterName("bounds")
	selMouseLocationOutside = objc.RegisterName("mouseLocationOutsideOfEventStream")
	selIsVisible = objc.RegisterName("isVisible")
	selIsKeyWindow = objc.RegisterName("isKeyWindow")
	selSendEvent = objc.RegisterName("sendEvent:")
	selSetWantsLayer = objc.RegisterName("setWantsLayer:")
	selLayer = objc.RegisterName("layer")
	selSetContents = objc.RegisterName("setContents:")
	selType = objc.RegisterName("type")
	selKeyCode = objc.RegisterName("keyCode")
	selCharacters = objc.RegisterName("characters")
	selUTF8String = objc.RegisterName("UTF8String")
	selModifierFlags = objc.RegisterName("modifierFlags")
	selButtonNumber = objc.RegisterName("buttonNumber")
}

func nsString(v string) objc.ID {
	return objc.ID(objc.GetClass("NSString")).Send(selStringWithUTF8String, v+"\x00")
}

// nsStringToGo copies the UTF-8 contents of an NSString.
func nsStringToGo(v objc.ID) string {
	if v == 0 {
		return ""
	}
	ptr := objc.Send[unsafe.Pointer](v, selUTF8String)
	if ptr == nil {
		return ""
	}
	var b []byte
	for n := 0; ; n++ {
		c := *(*byte)(unsafe.Add(ptr, n))
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}
