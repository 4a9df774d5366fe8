// Package aggregator turns a stream of responsiveness transitions into the
// state shown by the overlay: whether the UI thread is frozen right now, a
// rolling per-tick history of freeze time, and the cumulative total of
// freezes that crossed the threshold.
//
// An Aggregator has a single owner and is not safe for concurrent use.
// Every method takes the current time explicitly so the state machine can
// be driven without a real clock.
package aggregator

import (
	"time"

	"github.com/fadedlamp42/freezeview/internal/protocol"
)

// FreezeThreshold is the minimum freeze length counted into the total.
const FreezeThreshold int64 = 100

// Transition reports what Apply did to the state machine.
type Transition int

const (
	// None means the event matched the current state.
	None Transition = iota
	// Froze means Responsive -> Frozen.
	Froze
	// Recovered means Frozen -> Responsive.
	Recovered
)

func (t Transition) String() string {
	switch t {
	case Froze:
		return "froze"
	case Recovered:
		return "recovered"
	default:
		return "none"
	}
}

// Sample is the freeze time accrued during one tick interval.
type Sample struct {
	Tick       int64
	DurationMs float64
}

// Snapshot is an immutable copy of the aggregator state.
type Snapshot struct {
	Frozen      bool
	FreezeStart time.Time // zero when responsive
	TotalMs     int64
	History     []Sample
	MinTick     int64
	MaxTick     int64
	Capacity    int
}

// Aggregator owns the responsiveness state.
type Aggregator struct {
	frozen      bool
	freezeStart time.Time
	// segmentStart is where the running freeze timer was last restarted;
	// it equals freezeStart until the first tick inside a freeze.
	segmentStart time.Time
	accrued      time.Duration

	totalMs int64

	history  []Sample
	capacity int
	nextTick int64
	minTick  int64
}

// New returns a responsive aggregator whose rolling window holds capacity
// samples. Capacities below one are raised to one.
func New(capacity int) *Aggregator {
	a := &Aggregator{}
	a.SetCapacity(capacity)
	return a
}

// Frozen reports whether the last transition left the UI thread frozen.
func (a *Aggregator) Frozen() bool { return a.frozen }

// TotalMs is the sum of all completed freezes at or above FreezeThreshold.
func (a *Aggregator) TotalMs() int64 { return a.totalMs }

// Capacity is the number of samples the rolling window keeps.
func (a *Aggregator) Capacity() int { return a.capacity }

// Apply feeds one decoded event into the state machine.
func (a *Aggregator) Apply(ev protocol.Event, now time.Time) Transition {
	switch ev.Kind {
	case protocol.KindFrozen:
		if a.frozen {
			return None
		}
		a.frozen = true
		a.freezeStart = now
		a.segmentStart = now
		return Froze

	case protocol.KindResponsive:
		if !a.frozen {
			return None
		}
		a.frozen = false
		if d := now.Sub(a.segmentStart); d > 0 {
			a.accrued += d
		}
		a.freezeStart = time.Time{}
		a.segmentStart = time.Time{}
		if ev.DurationMs >= FreezeThreshold {
			a.totalMs += ev.DurationMs
		}
		return Recovered
	}
	return None
}

// Tick closes the current interval: it appends the freeze time accrued
// since the previous tick, restarts the timer, advances the window by one
// and evicts samples that fell out of it.
func (a *Aggregator) Tick(now time.Time) Sample {
	elapsed := a.accrued
	a.accrued = 0
	if a.frozen {
		if d := now.Sub(a.segmentStart); d > 0 {
			elapsed += d
		}
		a.segmentStart = now
	}

	s := Sample{Tick: a.nextTick, DurationMs: float64(elapsed) / float64(time.Millisecond)}
	a.history = append(a.history, s)
	a.nextTick++
	a.evict()
	return s
}

// SetCapacity resizes the rolling window, evicting immediately if it shrank.
func (a *Aggregator) SetCapacity(n int) {
	a.capacity = max(1, n)
	a.evict()
}

// Snapshot copies the state for readers outside the owning goroutine.
func (a *Aggregator) Snapshot() Snapshot {
	history := make([]Sample, len(a.history))
	copy(history, a.history)
	return Snapshot{
		Frozen:      a.frozen,
		FreezeStart: a.freezeStart,
		TotalMs:     a.totalMs,
		History:     history,
		MinTick:     a.minTick,
		MaxTick:     a.nextTick - 1,
		Capacity:    a.capacity,
	}
}

// evict drops samples below minTick. It shifts in place so the backing
// array never grows past capacity plus one.
func (a *Aggregator) evict() {
	a.minTick = max(0, a.nextTick-int64(a.capacity))
	n := 0
	for n < len(a.history) && a.history[n].Tick < a.minTick {
		n++
	}
	if n == 0 {
		return
	}
	copy(a.history, a.history[n:])
	a.history = a.history[:len(a.history)-n]
}
