//go:build windows

package tracker

import (
	"errors"
	"fmt"
	"iter"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Supported reports whether this build can see other processes' windows.
const Supported = true

const dwmwaExtendedFrameBounds = 9

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	dwmapi = windows.NewLazySystemDLL("dwmapi.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procIsWindow                 = user32.NewProc("IsWindow")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetDpiForWindow          = user32.NewProc("GetDpiForWindow")
	procSetCursorPos             = user32.NewProc("SetCursorPos")
	procDwmGetWindowAttribute    = dwmapi.NewProc("DwmGetWindowAttribute")
)

// callbacks are a finite per-process resource, so there is exactly one
// and enumerations are serialized around it
var (
	enumMu       sync.Mutex
	enumHandles  []uintptr
	enumCallback = windows.NewCallback(func(hwnd, _ uintptr) uintptr {
		enumHandles = append(enumHandles, hwnd)
		return 1
	})
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type win32Platform struct{}

// NewPlatform returns the window system backend for this OS.
func NewPlatform() Platform { return win32Platform{} }

func enumTopLevel() []uintptr {
	enumMu.Lock()
	defer enumMu.Unlock()
	enumHandles = enumHandles[:0]
	procEnumWindows.Call(enumCallback, 0)
	out := make([]uintptr, len(enumHandles))
	copy(out, enumHandles)
	return out
}

func (win32Platform) Windows() iter.Seq[Window] {
	return func(yield func(Window) bool) {
		for _, hwnd := range enumTopLevel() {
			var pid uint32
			procGetWindowThreadProcessID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))

			buf := make([]uint16, 256)
			procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))

			visible, _, _ := procIsWindowVisible.Call(hwnd)

			w := Window{
				Handle:  Handle{ID: hwnd, PID: int32(pid)},
				Title:   windows.UTF16ToString(buf),
				Visible: visible != 0,
			}
			if !yield(w) {
				return
			}
		}
	}
}

func (win32Platform) FrameBounds(h Handle) (Rect, error) {
	if ok, _, _ := procIsWindow.Call(h.ID); ok == 0 {
		return Rect{}, errors.New("window destroyed")
	}
	var r rect
	hr, _, _ := procDwmGetWindowAttribute.Call(
		h.ID,
		dwmwaExtendedFrameBounds,
		uintptr(unsafe.Pointer(&r)),
		unsafe.Sizeof(r),
	)
	if hr != 0 {
		return Rect{}, fmt.Errorf("DwmGetWindowAttribute: hresult 0x%08x", uint32(hr))
	}
	return Rect{
		Left:   int(r.Left),
		Top:    int(r.Top),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}, nil
}

func (win32Platform) DPI(h Handle) (uint32, error) {
	dpi, _, _ := procGetDpiForWindow.Call(h.ID)
	if dpi == 0 {
		return 0, errors.New("GetDpiForWindow failed")
	}
	return uint32(dpi), nil
}

func (win32Platform) SetCursor(x, y int) error {
	ok, _, err := procSetCursorPos.Call(uintptr(x), uintptr(y))
	if ok == 0 {
		return fmt.Errorf("SetCursorPos: %w", err)
	}
	return nil
}
