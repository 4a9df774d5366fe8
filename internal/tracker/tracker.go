// Package tracker finds the target application's top-level window and
// reports where the overlay should sit on top of it.
//
// Window handles are never owned: the target can close at any time, so
// every geometry query goes back to the platform.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BaseDPI is the DPI at which one device pixel equals one logical unit.
const BaseDPI = 96

// DefaultPollInterval is the delay between window discovery attempts.
const DefaultPollInterval = 100 * time.Millisecond

var (
	// ErrGeometryUnavailable means the window could not be measured this
	// tick; callers keep the last known position.
	ErrGeometryUnavailable = errors.New("window geometry unavailable")
	// ErrUnsupported is returned by backends without window access.
	ErrUnsupported = errors.New("window tracking not supported on this platform")
)

// Handle identifies a platform window and its owning process.
type Handle struct {
	ID  uintptr
	PID int32
}

// Window is one entry of a top-level window enumeration.
type Window struct {
	Handle  Handle
	Title   string
	Visible bool
}

// Rect is a rectangle in device pixels.
type Rect struct {
	Left, Top, Width, Height int
}

// Platform is the window system seen by the tracker.
type Platform interface {
	// Windows enumerates top-level windows. The sequence is finite and
	// each call starts a fresh enumeration.
	Windows() iter.Seq[Window]
	// FrameBounds returns the extended frame bounds in device pixels.
	FrameBounds(h Handle) (Rect, error)
	// DPI returns the DPI of the monitor hosting the window.
	DPI(h Handle) (uint32, error)
	// SetCursor moves the pointer to device coordinates.
	SetCursor(x, y int) error
}

// Geometry is the tracked window measured in device pixels.
type Geometry struct {
	LeftPx, TopPx, WidthPx, HeightPx int
	DPI                              uint32
}

// Bounds is a rectangle in logical (96-DPI) units.
type Bounds struct {
	Left, Top, Width, Height float64
}

// Scale converts device pixels to logical units.
func (g Geometry) Scale() float64 {
	return BaseDPI / float64(g.DPI)
}

// Logical converts the geometry to logical units.
func (g Geometry) Logical() Bounds {
	s := g.Scale()
	return Bounds{
		Left:   float64(g.LeftPx) * s,
		Top:    float64(g.TopPx) * s,
		Width:  float64(g.WidthPx) * s,
		Height: float64(g.HeightPx) * s,
	}
}

// Match returns the first window owned by pid whose title contains caption
// (case-insensitively) and which is visible.
func Match(windows iter.Seq[Window], pid int32, caption string) (Window, bool) {
	needle := strings.ToLower(caption)
	for w := range windows {
		if w.Handle.PID != pid {
			continue
		}
		if !strings.Contains(strings.ToLower(w.Title), needle) {
			continue
		}
		if !w.Visible {
			continue
		}
		return w, true
	}
	return Window{}, false
}

// Tracker locates and measures the target window.
type Tracker struct {
	platform     Platform
	pollInterval time.Duration
	logger       *zap.Logger
}

// New returns a tracker polling every pollInterval (DefaultPollInterval
// when zero).
func New(platform Platform, pollInterval time.Duration, logger *zap.Logger) *Tracker {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Tracker{platform: platform, pollInterval: pollInterval, logger: logger}
}

// FindWindow polls until a matching window exists. There is no timeout:
// the target may create its window long after the process starts. Only
// ctx cancellation stops it.
func (t *Tracker) FindWindow(ctx context.Context, pid int32, caption string) (Handle, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		if w, ok := Match(t.platform.Windows(), pid, caption); ok {
			t.logger.Info("target window found",
				zap.Int32("pid", pid),
				zap.String("title", w.Title),
				zap.Int("attempts", attempt))
			return w.Handle, nil
		}
		if attempt == 1 {
			t.logger.Info("waiting for target window", zap.Int32("pid", pid), zap.String("caption", caption))
		}

		select {
		case <-ctx.Done():
			return Handle{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GeometryOf measures h. Any platform failure, including a destroyed
// window, is reported as ErrGeometryUnavailable.
func (t *Tracker) GeometryOf(h Handle) (Geometry, error) {
	r, err := t.platform.FrameBounds(h)
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: %v", ErrGeometryUnavailable, err)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return Geometry{}, fmt.Errorf("%w: empty frame %dx%d", ErrGeometryUnavailable, r.Width, r.Height)
	}
	dpi, err := t.platform.DPI(h)
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: %v", ErrGeometryUnavailable, err)
	}
	if dpi == 0 {
		return Geometry{}, fmt.Errorf("%w: zero dpi", ErrGeometryUnavailable)
	}
	return Geometry{LeftPx: r.Left, TopPx: r.Top, WidthPx: r.Width, HeightPx: r.Height, DPI: dpi}, nil
}

// FocusPoint is a third of the way into r from its top-left corner.
func FocusPoint(r Rect) (x, y int) {
	return r.Left + r.Width/3, r.Top + r.Height/3
}

// Activate moves the pointer into the freshly found window. It runs once,
// at discovery; failures are logged and otherwise ignored.
func (t *Tracker) Activate(h Handle) {
	r, err := t.platform.FrameBounds(h)
	if err != nil {
		t.logger.Debug("skip cursor placement", zap.Error(err))
		return
	}
	x, y := FocusPoint(r)
	if err := t.platform.SetCursor(x, y); err != nil {
		t.logger.Debug("set cursor failed", zap.Error(err))
	}
}
