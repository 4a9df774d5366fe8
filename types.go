// messages that cross into the bubbletea update loop.
//
// background goroutines (pipe reader, window discovery, parent watch)
// never touch model state. they post one of these through
// tea.Program.Send and Update applies it on the UI goroutine.

package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fadedlamp42/freezeview/internal/pipe"
	"github.com/fadedlamp42/freezeview/internal/protocol"
	"github.com/fadedlamp42/freezeview/internal/tracker"
)

// sender is the part of *tea.Program the workers use.
type sender interface {
	Send(msg tea.Msg)
}

// tickMsg fires every render period.
type tickMsg time.Time

// eventMsg carries one decoded transition and when it arrived.
type eventMsg struct {
	event protocol.Event
	at    time.Time
}

// channelMsg reports a pipe lifecycle change. err is set when the pipe
// closed because of a ChannelError.
type channelMsg struct {
	state pipe.State
	path  string
	err   error
}

// windowFoundMsg hands the discovered target window to the UI, once.
type windowFoundMsg struct {
	handle tracker.Handle
}

// parentExitedMsg means the monitored process is gone.
type parentExitedMsg struct{}
