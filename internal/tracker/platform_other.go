//go:build !windows

package tracker

import "iter"

// Supported reports whether this build can see other processes' windows.
const Supported = false

type nullPlatform struct{}

// NewPlatform returns the window system backend for this OS. Outside
// Windows nothing is enumerated, so FindWindow keeps waiting.
func NewPlatform() Platform { return nullPlatform{} }

func (nullPlatform) Windows() iter.Seq[Window] {
	return func(func(Window) bool) {}
}

func (nullPlatform) FrameBounds(Handle) (Rect, error) { return Rect{}, ErrUnsupported }

func (nullPlatform) DPI(Handle) (uint32, error) { return 0, ErrUnsupported }

func (nullPlatform) SetCursor(int, int) error { return ErrUnsupported }
