package main

import (
	"bufio"
	"context"
	"io"
	"math/rand/v2"
	"time"

	"github.com/fadedlamp42/freezeview/internal/protocol"
)

// lineSender is the part of *pipe.Writer the replay loops use.
type lineSender interface {
	Send(ev protocol.Event) error
	SendLine(line string) error
}

type sleeper func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// forward sends every transcript line verbatim, undecodable ones included,
// pausing gap between lines.
func forward(ctx context.Context, r io.Reader, w lineSender, gap time.Duration, sleep sleeper) (int, error) {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		if n > 0 && gap > 0 {
			if err := sleep(ctx, gap); err != nil {
				return n, err
			}
		}
		if err := w.SendLine(sc.Text()); err != nil {
			return n, err
		}
		n++
	}
	return n, sc.Err()
}

// freeze is one simulated episode: responsive for wait, then frozen for
// hold.
type freeze struct {
	wait time.Duration
	hold time.Duration
}

type simulator struct {
	rng       *rand.Rand
	gap       time.Duration
	maxFreeze time.Duration
}

// next draws a responsive gap in [gap/2, 3gap/2) and a freeze in
// [20ms, maxFreeze].
func (s simulator) next() freeze {
	const minHold = 20 * time.Millisecond
	wait := s.gap / 2
	if s.gap > 0 {
		wait += time.Duration(s.rng.Int64N(int64(s.gap)))
	}
	hold := minHold
	if s.maxFreeze > minHold {
		hold += time.Duration(s.rng.Int64N(int64(s.maxFreeze-minHold) + 1))
	}
	return freeze{wait: wait, hold: hold}
}

// run plays count freezes, or until ctx ends when count is zero.
func (s simulator) run(ctx context.Context, w lineSender, count int, sleep sleeper) (int, error) {
	for n := 0; count == 0 || n < count; n++ {
		f := s.next()
		if err := sleep(ctx, f.wait); err != nil {
			return n, err
		}
		if err := w.Send(protocol.Frozen()); err != nil {
			return n, err
		}
		if err := sleep(ctx, f.hold); err != nil {
			return n, err
		}
		if err := w.Send(protocol.Responsive(f.hold.Milliseconds())); err != nil {
			return n, err
		}
	}
	return count, nil
}
