// bubbletea model, update loop, and commands.
//
// follows the elm architecture: model holds all state, Update applies
// messages posted by the workers, View renders to string. the overlay
// driver is only ever touched from here, so no locking is needed.

package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fadedlamp42/freezeview/internal/overlay"
	"github.com/fadedlamp42/freezeview/internal/pipe"
	"github.com/fadedlamp42/freezeview/internal/tracker"
)

// -- model --

type model struct {
	cfg    config
	driver *overlay.Driver

	// monitored process
	parentPID  int32
	parentName string

	// terminal dimensions
	width  int
	height int

	// last render frame and the clock it was taken at
	frame overlay.Frame
	now   time.Time

	// pipe lifecycle
	channel     pipe.State
	channelPath string
	channelErr  error
	events      int

	// target window
	window      tracker.Handle
	windowFound bool

	ready bool
}

func newModel(cfg config, driver *overlay.Driver, pid int32, name string) model {
	return model{
		cfg:        cfg,
		driver:     driver,
		parentPID:  pid,
		parentName: name,
		channel:    pipe.StateListening,
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.cfg.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.driver.Resize(max(1, m.width-axisWidth))
		m.ready = true
		return m, nil
	case tickMsg:
		m.now = time.Time(msg)
		m.frame = m.driver.Tick(m.now)
		return m, tickCmd(m.cfg.Tick)
	case eventMsg:
		m.driver.Apply(msg.event, msg.at)
		m.events++
		return m, nil
	case channelMsg:
		m.channel = msg.state
		if msg.path != "" {
			m.channelPath = msg.path
		}
		if msg.err != nil {
			m.channelErr = msg.err
		}
		return m, nil
	case windowFoundMsg:
		if !m.windowFound {
			m.window = msg.handle
			m.windowFound = true
			m.driver.Track(msg.handle)
		}
		return m, nil
	case parentExitedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	return m.renderView()
}

// -- key handlers --

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	}
	return m, nil
}

// -- commands --

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
