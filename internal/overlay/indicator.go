package overlay

// Phase is the render-side state of the freeze indicator.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseShowing
	PhaseFrozen
	PhaseResolving
)

func (p Phase) String() string {
	switch p {
	case PhaseShowing:
		return "showing"
	case PhaseFrozen:
		return "frozen"
	case PhaseResolving:
		return "resolving"
	default:
		return "idle"
	}
}

// Presenter is the cancellable freeze indicator effect. Start and Stop
// report whether they changed anything.
type Presenter interface {
	Start() bool
	Stop() bool
}

// DefaultShowTicks is how many ticks the show animation lasts.
const DefaultShowTicks = 4

// Indicator is the freeze banner: it animates in over ShowTicks ticks,
// stays up while frozen, and shows a one-tick resolve frame after Stop.
type Indicator struct {
	showTicks int
	running   bool
	resolving bool
	frame     int
}

// NewIndicator returns an idle indicator.
func NewIndicator(showTicks int) *Indicator {
	return &Indicator{showTicks: max(1, showTicks)}
}

// Start begins the effect. It is a no-op while already running.
func (i *Indicator) Start() bool {
	if i.running {
		return false
	}
	i.running = true
	i.resolving = false
	i.frame = 0
	return true
}

// Stop ends the effect immediately.
func (i *Indicator) Stop() bool {
	if !i.running {
		return false
	}
	i.running = false
	i.resolving = true
	i.frame = 0
	return true
}

// Advance steps the animation by one tick.
func (i *Indicator) Advance() {
	switch {
	case i.running:
		i.frame++
	case i.resolving:
		i.resolving = false
	}
}

// Frame is the number of ticks since Start.
func (i *Indicator) Frame() int { return i.frame }

// Progress is how far the show animation got, in [0, 1].
func (i *Indicator) Progress() float64 {
	if !i.running {
		return 0
	}
	return min(1, float64(i.frame)/float64(i.showTicks))
}

// Phase reports the current state.
func (i *Indicator) Phase() Phase {
	switch {
	case i.running && i.frame < i.showTicks:
		return PhaseShowing
	case i.running:
		return PhaseFrozen
	case i.resolving:
		return PhaseResolving
	default:
		return PhaseIdle
	}
}
