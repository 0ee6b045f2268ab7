//go:build windows

package window

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/tinyrange/pixie/internal/input"
)

const (
	csHRedraw = 0x0002
	csVRedraw = 0x0001

	wsOverlapped  = 0x00000000
	wsCaption     = 0x00C00000
	wsSysMenu     = 0x00080000
	wsMinimizeBox = 0x00020000
	swShow        = 5

	wmDestroy = 0x0002
	wmClose   = 0x0010
	wmQuit    = 0x0012
	wmKeyDown = 0x0100
	wmKeyUp   = 0x0101
	wmChar    = 0x0102
	pmRemove  = 0x0001

	cwUseDefault = 0x80000000

	biRGB        = 0
	dibRGBColors = 0

	vkLButton = 0x01
	vkRButton = 0x02
	vkMButton = 0x04

	keyDownMask = 0x80

	errorClassAlreadyExists = 1410
)

type wndClassEx struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cbClsExtra    int32
	cbWndExtra    int32
	hInstance     windows.Handle
	hIcon         windows.Handle
	hCursor       windows.Handle
	hbrBackground windows.Handle
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       windows.Handle
}

type msg struct {
	hwnd     windows.HWND
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

type point struct {
	x int32
	y int32
}

type rect struct {
	left   int32
	top    int32
	right  int32
	bottom int32
}

// Mirrors BITMAPINFOHEADER (must be 40 bytes).
type bitmapInfoHeader struct {
	biSize          uint32
	biWidth         int32
	biHeight        int32
	biPlanes        uint16
	biBitCount      uint16
	biCompression   uint32
	biSizeImage     uint32
	biXPelsPerMeter int32
	biYPelsPerMeter int32
	biClrUsed       uint32
	biClrImportant  uint32
}

type bitmapInfo struct {
	header bitmapInfoHeader
	colors [1]uint32
}

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassEx  = user32.NewProc("RegisterClassExW")
	procCreateWindowEx   = user32.NewProc("CreateWindowExW")
	procDefWindowProc    = user32.NewProc("DefWindowProcW")
	procDestroyWindow    = user32.NewProc("DestroyWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
	procUpdateWindow     = user32.NewProc("UpdateWindow")
	procAdjustWindowRect = user32.NewProc("AdjustWindowRect")
	procPeekMessage      = user32.NewProc("PeekMessageW")
	procTranslateMessage = user32.NewProc("TranslateMessage")
	procDispatchMessage  = user32.NewProc("DispatchMessageW")
	procPostQuitMessage  = user32.NewProc("PostQuitMessage")
	procGetDC            = user32.NewProc("GetDC")
	procReleaseDC        = user32.NewProc("ReleaseDC")
	procGetCursorPos     = user32.NewProc("GetCursorPos")
	procScreenToClient   = user32.NewProc("ScreenToClient")
	procGetKeyboardState = user32.NewProc("GetKeyboardState")
	procGetFocus         = user32.NewProc("GetFocus")
	procLoadCursor       = user32.NewProc("LoadCursorW")

	procSetDIBitsToDevice = gdi32.NewProc("SetDIBitsToDevice")

	procGetModuleHandle = kernel32.NewProc("GetModuleHandleW")
	procSetLastError    = kernel32.NewProc("SetLastError")
	procGetLastError    = kernel32.NewProc("GetLastError")
)

// vkKeys maps keys to Win32 virtual-key codes.
var vkKeys = NewKeyMap(map[input.Key]uint32{
	input.KeyA: 0x41, input.KeyB: 0x42, input.KeyC: 0x43, input.KeyD: 0x44,
	input.KeyE: 0x45, input.KeyF: 0x46, input.KeyG: 0x47, input.KeyH: 0x48,
	input.KeyI: 0x49, input.KeyJ: 0x4A, input.KeyK: 0x4B, input.KeyL: 0x4C,
	input.KeyM: 0x4D, input.KeyN: 0x4E, input.KeyO: 0x4F, input.KeyP: 0x50,
	input.KeyQ: 0x51, input.KeyR: 0x52, input.KeyS: 0x53, input.KeyT: 0x54,
	input.KeyU: 0x55, input.KeyV: 0x56, input.KeyW: 0x57, input.KeyX: 0x58,
	input.KeyY: 0x59, input.KeyZ: 0x5A,

	input.Key0: 0x30, input.Key1: 0x31, input.Key2: 0x32, input.Key3: 0x33,
	input.Key4: 0x34, input.Key5: 0x35, input.Key6: 0x36, input.Key7: 0x37,
	input.Key8: 0x38, input.Key9: 0x39,

	input.KeyLeftShift:  0xA0, // VK_LSHIFT
	input.KeyRightShift: 0xA1, // VK_RSHIFT
	input.KeyEscape:     0x1B,
	input.KeyBackspace:  0x08,
	input.KeyDelete:     0x2E,
	input.KeyUp:         0x26,
	input.KeyDown:       0x28,
	input.KeyLeft:       0x25,
	input.KeyRight:      0x27,
	input.KeyHome:       0x24,
	input.KeyEnd:        0x23,
	input.KeyPeriod:     0xBE, // VK_OEM_PERIOD
})

var vkButtons = [input.ButtonCount]uint32{
	input.ButtonLeft:   vkLButton,
	input.ButtonRight:  vkRButton,
	input.ButtonMiddle: vkMButton,
}

func mustFindProc(p *windows.LazyProc) error {
	if err := p.Find(); err != nil {
		return fmt.Errorf("missing procedure %q: %w", p.Name, err)
	}
	return nil
}

func validateProcs() error {
	procs := []*windows.LazyProc{
		procRegisterClassEx,
		procCreateWindowEx,
		procPeekMessage,
		procGetDC,
		procReleaseDC,
		procGetKeyboardState,
		procSetDIBitsToDevice,
	}
	for _, p := range procs {
		if err := mustFindProc(p); err != nil {
			return err
		}
	}
	return nil
}

var (
	// Make the class name unique per-process.
	windowClassName = fmt.Sprintf("PixieWindow_%d", os.Getpid())
	windowClass     = windows.StringToUTF16Ptr(windowClassName)

	classRegistered bool
)

func lastError() windows.Errno {
	e, _, _ := procGetLastError.Call()
	return windows.Errno(e)
}

func clearLastError() {
	procSetLastError.Call(0)
}

func winErr(op string) error {
	e := lastError()
	if e == 0 {
		return fmt.Errorf("%s failed", op)
	}
	return fmt.Errorf("%s failed: %w", op, e)
}

type winWindow struct {
	hwnd    windows.HWND
	running bool
	bmi     bitmapInfo
	keys    [256]byte
}

func New(title string, width, height int) (Platform, error) {
	runtime.LockOSThread()

	if unsafe.Sizeof(bitmapInfoHeader{}) != 40 {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf(
			"BITMAPINFOHEADER size mismatch: got %d, want 40",
			unsafe.Sizeof(bitmapInfoHeader{}),
		)
	}

	if err := validateProcs(); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	if err := registerWindowClass(); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	hwnd, err := createWindow(title, width, height)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	procShowWindow.Call(uintptr(hwnd), swShow)
	procUpdateWindow.Call(uintptr(hwnd))

	return &winWindow{hwnd: hwnd, running: true}, nil
}

func (w *winWindow) Destroy() {
	if w.hwnd != 0 {
		procDestroyWindow.Call(uintptr(w.hwnd))
		w.hwnd = 0
		// Discard the WM_QUIT posted by WM_DESTROY so it cannot end the
		// next window opened on this thread.
		var m msg
		for {
			ret, _, _ := procPeekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
			if ret == 0 {
				break
			}
		}
	}
	if w.running {
		w.running = false
		runtime.UnlockOSThread()
	}
}

func (w *winWindow) Poll(sink input.Sink) bool {
	if !w.running {
		return false
	}

	var m msg
	for {
		ret, _, _ := procPeekMessage.Call(
			uintptr(unsafe.Pointer(&m)),
			0,
			0,
			0,
			pmRemove,
		)
		if ret == 0 {
			break
		}
		if m.message == wmQuit {
			// The window procedure only posts WM_QUIT after the window
			// is gone.
			w.hwnd = 0
			w.running = false
			runtime.UnlockOSThread()
			return false
		}
		switch m.message {
		case wmKeyDown, wmKeyUp:
			// Keyboard state only shows where a key ended up, so feed the
			// messages through to catch a press and release in one pump.
			sink.SetKeyDown(vkKeys.Lookup(uint32(m.wParam)), m.message == wmKeyDown)
		case wmChar:
			if m.wParam < 0x100 {
				sink.AppendCharacter(byte(m.wParam))
			}
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}

	w.readInputState(sink)
	return true
}

// readInputState copies the thread keyboard state, which reflects every
// message retrieved so far, into sink. Without focus the thread stops seeing
// key messages, so everything is reported up instead.
func (w *winWindow) readInputState(sink input.Sink) {
	focus, _, _ := procGetFocus.Call()
	if windows.HWND(focus) != w.hwnd {
		sink.ReleaseAll()
	} else if ret, _, _ := procGetKeyboardState.Call(uintptr(unsafe.Pointer(&w.keys[0]))); ret != 0 {
		for k := input.KeyUnknown + 1; k < input.KeyCount; k++ {
			if vk, ok := vkKeys.Native(k); ok {
				sink.SetKeyDown(k, w.keys[vk]&keyDownMask != 0)
			}
		}
		for b, vk := range vkButtons {
			sink.SetMouseButtonDown(input.Button(b), w.keys[vk]&keyDownMask != 0)
		}
	}

	var p point
	ok, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	if ok != 0 {
		procScreenToClient.Call(uintptr(w.hwnd), uintptr(unsafe.Pointer(&p)))
		sink.SetMousePosition(int(p.x), int(p.y))
	}
}

func (w *winWindow) Blit(pixels []uint32, width, height int) {
	if w.hwnd == 0 || len(pixels) < width*height || width <= 0 || height <= 0 {
		return
	}

	dc, _, _ := procGetDC.Call(uintptr(w.hwnd))
	if dc == 0 {
		return
	}
	defer procReleaseDC.Call(uintptr(w.hwnd), dc)

	w.bmi.header = bitmapInfoHeader{
		biSize:     uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		biWidth:    int32(width),
		biHeight:   -int32(height), // top-down
		biPlanes:   1,
		biBitCount: 32,

		biCompression: biRGB,
	}

	procSetDIBitsToDevice.Call(
		dc,
		0, 0,
		uintptr(width), uintptr(height),
		0, 0,
		0, uintptr(height),
		uintptr(unsafe.Pointer(&pixels[0])),
		uintptr(unsafe.Pointer(&w.bmi)),
		dibRGBColors,
	)
}

func registerWindowClass() error {
	if classRegistered {
		return nil
	}

	cb := windows.NewCallback(wndProc)
	wc := wndClassEx{
		cbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
		style:         csHRedraw | csVRedraw,
		lpfnWndProc:   cb,
		hInstance:     moduleHandle(),
		hCursor:       loadCursor(),
		lpszClassName: windowClass,
	}

	clearLastError()
	ret, _, err := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc)))
	if ret == 0 {
		if errno, ok := err.(windows.Errno); ok && int(errno) == errorClassAlreadyExists {
			return fmt.Errorf("window class already exists unexpectedly: %s", windowClassName)
		}
		return winErr("RegisterClassExW")
	}
	classRegistered = true
	return nil
}

func createWindow(title string, width, height int) (windows.HWND, error) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, fmt.Errorf("window title: %w", err)
	}

	style := uint32(wsOverlapped | wsCaption | wsSysMenu | wsMinimizeBox)

	// Grow the outer frame so the client area matches the pixel buffer.
	r := rect{right: int32(width), bottom: int32(height)}
	procAdjustWindowRect.Call(uintptr(unsafe.Pointer(&r)), uintptr(style), 0)

	clearLastError()
	ret, _, _ := procCreateWindowEx.Call(
		0,
		uintptr(unsafe.Pointer(windowClass)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(style),
		cwUseDefault,
		cwUseDefault,
		uintptr(r.right-r.left),
		uintptr(r.bottom-r.top),
		0,
		0,
		uintptr(moduleHandle()),
		0,
	)
	if ret == 0 {
		return 0, winErr("CreateWindowExW")
	}
	return windows.HWND(ret), nil
}

func wndProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	switch msg {
	case wmClose:
		procDestroyWindow.Call(hwnd)
		return 0
	case wmDestroy:
		procPostQuitMessage.Call(0)
		return 0
	}
	ret, _, _ := procDefWindowProc.Call(hwnd, msg, wParam, lParam)
	return ret
}

func loadCursor() windows.Handle {
	const idcArrow = 32512
	clearLastError()
	ret, _, _ := procLoadCursor.Call(0, uintptr(idcArrow))
	return windows.Handle(ret)
}

func moduleHandle() windows.Handle {
	clearLastError()
	h, _, _ := procGetModuleHandle.Call(0)
	return windows.Handle(h)
}
