package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadedlamp42/freezeview/internal/pipe"
	"github.com/fadedlamp42/freezeview/internal/protocol"
)

type captured struct {
	lines []string
	fail  error
}

func (c *captured) Send(ev protocol.Event) error { return c.SendLine(protocol.Encode(ev)) }

func (c *captured) SendLine(line string) error {
	if c.fail != nil {
		return c.fail
	}
	c.lines = append(c.lines, strings.TrimSuffix(line, "\n"))
	return nil
}

type sleepLog []time.Duration

func (s *sleepLog) sleep(_ context.Context, d time.Duration) error {
	*s = append(*s, d)
	return nil
}

func TestForwardSendsLinesVerbatim(t *testing.T) {
	var w captured
	var slept sleepLog
	n, err := forward(context.Background(), strings.NewReader("false\ngarbage\ntrue|250\n"), &w, 10*time.Millisecond, slept.sleep)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"false", "garbage", "true|250"}, w.lines)
	assert.Equal(t, sleepLog{10 * time.Millisecond, 10 * time.Millisecond}, slept)
}

func TestForwardStopsOnWriteError(t *testing.T) {
	boom := &pipe.ChannelError{Op: "write", Cause: errors.New("broken")}
	w := captured{fail: boom}
	n, err := forward(context.Background(), strings.NewReader("false\n"), &w, 0, sleepCtx)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, boom)
}

func TestSimulatorBounds(t *testing.T) {
	sim := simulator{
		rng:       rand.New(rand.NewPCG(1, 2)),
		gap:       time.Second,
		maxFreeze: 600 * time.Millisecond,
	}
	for range 200 {
		f := sim.next()
		assert.GreaterOrEqual(t, f.wait, 500*time.Millisecond)
		assert.Less(t, f.wait, 1500*time.Millisecond)
		assert.GreaterOrEqual(t, f.hold, 20*time.Millisecond)
		assert.LessOrEqual(t, f.hold, 600*time.Millisecond)
	}
}

func TestSimulatorEmitsPairedTransitions(t *testing.T) {
	sim := simulator{rng: rand.New(rand.NewPCG(3, 4)), gap: 100 * time.Millisecond, maxFreeze: 300 * time.Millisecond}
	var w captured
	var slept sleepLog

	n, err := sim.run(context.Background(), &w, 3, slept.sleep)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, w.lines, 6)
	require.Len(t, slept, 6)

	for i := 0; i < 6; i += 2 {
		assert.Equal(t, "false", w.lines[i])
		ev, err := protocol.Decode(w.lines[i+1])
		require.NoError(t, err)
		assert.Equal(t, protocol.KindResponsive, ev.Kind)
		assert.Equal(t, slept[i+1].Milliseconds(), ev.DurationMs, "reported duration matches the hold")
	}
}

func TestSimulatorStopsOnCancel(t *testing.T) {
	sim := simulator{rng: rand.New(rand.NewPCG(5, 6)), gap: time.Hour, maxFreeze: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var w captured
	n, err := sim.run(ctx, &w, 0, sleepCtx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
	assert.Empty(t, w.lines)
}
