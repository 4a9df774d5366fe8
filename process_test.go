package main

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recorder is a sender that keeps every message.
type recorder struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func newRecorder() *recorder { return &recorder{} }

func (r *recorder) Send(msg tea.Msg) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recorder) all() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tea.Msg(nil), r.msgs...)
}

type scriptedLiveness struct {
	answers []error // nil means "not running"
	calls   int
}

func (s *scriptedLiveness) IsRunningWithContext(context.Context) (bool, error) {
	i := min(s.calls, len(s.answers)-1)
	s.calls++
	if err := s.answers[i]; err != nil {
		if errors.Is(err, errStillRunning) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

var errStillRunning = errors.New("still running")

// TestHelperProcess is a child process that lives until its stdin closes.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("FREEZEVIEW_HELPER_PROCESS") != "1" {
		t.Skip("helper process")
	}
	_, _ = io.Copy(io.Discard, os.Stdin)
	os.Exit(0)
}

func TestWatchParentSeesRealExit(t *testing.T) {
	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperProcess$")
	cmd.Env = append(os.Environ(), "FREEZEVIEW_HELPER_PROCESS=1")
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	proc, _, err := openParent(ctx, int32(cmd.Process.Pid))
	require.NoError(t, err)

	rec := newRecorder()
	done := make(chan error, 1)
	go func() { done <- watchParent(ctx, proc, 20*time.Millisecond, rec, zaptest.NewLogger(t)) }()

	require.NoError(t, stdin.Close())
	require.NoError(t, cmd.Wait())

	require.NoError(t, <-done)
	assert.Equal(t, []tea.Msg{parentExitedMsg{}}, rec.all())
}

func TestOpenParentMissingProcess(t *testing.T) {
	_, _, err := openParent(context.Background(), math.MaxInt32)
	assert.Error(t, err)
}

func TestWatchParentRetriesQueryErrors(t *testing.T) {
	live := &scriptedLiveness{answers: []error{errStillRunning, errors.New("transient"), nil}}
	rec := newRecorder()

	err := watchParent(context.Background(), live, time.Millisecond, rec, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 3, live.calls)
	assert.Equal(t, []tea.Msg{parentExitedMsg{}}, rec.all())
}

func TestWatchParentStopsOnCancel(t *testing.T) {
	live := &scriptedLiveness{answers: []error{errStillRunning}}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := watchParent(ctx, live, time.Millisecond, newRecorder(), zaptest.NewLogger(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, live.calls)
}
