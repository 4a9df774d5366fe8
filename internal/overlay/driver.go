// Package overlay drives the overlay once per render tick: it samples the
// aggregator, steps the freeze indicator and re-measures the target window.
//
// A Driver belongs to the UI goroutine. Events decoded on other goroutines
// must be marshaled onto that goroutine before Apply is called.
package overlay

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fadedlamp42/freezeview/internal/aggregator"
	"github.com/fadedlamp42/freezeview/internal/protocol"
	"github.com/fadedlamp42/freezeview/internal/tracker"
)

// DefaultTickInterval is the render period.
const DefaultTickInterval = 150 * time.Millisecond

// Locator measures a window; *tracker.Tracker implements it.
type Locator interface {
	GeometryOf(h tracker.Handle) (tracker.Geometry, error)
}

// Frame is everything the rendering layer needs for one redraw.
type Frame struct {
	Snapshot  aggregator.Snapshot
	Phase     Phase
	Progress  float64
	Geometry  tracker.Geometry
	Placement tracker.Bounds
	// Placed is false until the first successful geometry query.
	Placed bool
	// Stale is set when this tick's query failed and the last known
	// placement is being reused.
	Stale bool
}

// Driver owns the aggregator and the indicator.
type Driver struct {
	agg       *aggregator.Aggregator
	indicator *Indicator
	hook      Presenter
	locator   Locator
	barWidth  int
	logger    *zap.Logger

	target   tracker.Handle
	tracking bool
	last     Frame
}

// Option configures a Driver.
type Option func(*Driver)

// WithPresenter mirrors every indicator start/stop request to p, for
// renderers that run their own effect.
func WithPresenter(p Presenter) Option {
	return func(d *Driver) { d.hook = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// NewDriver returns a driver drawing barWidth cells per sample.
func NewDriver(locator Locator, barWidth int, opts ...Option) *Driver {
	d := &Driver{
		agg:       aggregator.New(1),
		indicator: NewIndicator(DefaultShowTicks),
		locator:   locator,
		barWidth:  max(1, barWidth),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Apply feeds one transition into the aggregator and starts or cancels
// the freeze indicator accordingly.
func (d *Driver) Apply(ev protocol.Event, now time.Time) aggregator.Transition {
	tr := d.agg.Apply(ev, now)
	switch tr {
	case aggregator.Froze:
		d.indicator.Start()
		if d.hook != nil {
			d.hook.Start()
		}
	case aggregator.Recovered:
		d.indicator.Stop()
		if d.hook != nil {
			d.hook.Stop()
		}
	}
	return tr
}

// Resize recomputes how many samples fit the drawable width.
func (d *Driver) Resize(drawableWidth int) int {
	capacity := max(1, drawableWidth/d.barWidth)
	if capacity != d.agg.Capacity() {
		d.agg.SetCapacity(capacity)
		d.logger.Debug("chart resized", zap.Int("width", drawableWidth), zap.Int("capacity", capacity))
	}
	return capacity
}

// Track starts re-measuring h on every tick.
func (d *Driver) Track(h tracker.Handle) {
	d.target = h
	d.tracking = true
}

// Tick advances one render period and returns the frame to draw.
func (d *Driver) Tick(now time.Time) Frame {
	d.agg.Tick(now)

	// the frame shows the indicator as it stands, then the animation steps
	f := Frame{
		Snapshot:  d.agg.Snapshot(),
		Phase:     d.indicator.Phase(),
		Progress:  d.indicator.Progress(),
		Geometry:  d.last.Geometry,
		Placement: d.last.Placement,
		Placed:    d.last.Placed,
	}
	d.indicator.Advance()

	if d.tracking && d.locator != nil {
		g, err := d.locator.GeometryOf(d.target)
		switch {
		case err == nil:
			f.Geometry = g
			f.Placement = g.Logical()
			f.Placed = true
		case errors.Is(err, tracker.ErrGeometryUnavailable):
			f.Stale = true
		default:
			d.logger.Warn("geometry query failed", zap.Error(err))
			f.Stale = true
		}
	}

	d.last = f
	return f
}

// Last is the frame produced by the most recent Tick.
func (d *Driver) Last() Frame { return d.last }

// Snapshot reads the aggregator between ticks.
func (d *Driver) Snapshot() aggregator.Snapshot { return d.agg.Snapshot() }

// Phase is the indicator phase the next Tick will render.
func (d *Driver) Phase() Phase { return d.indicator.Phase() }
