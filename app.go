// process lifecycle: wires the pipe reader, window discovery, and parent
// watch to the bubbletea program and tears them down together.
//
// every background worker posts messages through tea.Program.Send; the
// program's event loop is the only consumer, so model state is never
// shared across goroutines.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fadedlamp42/freezeview/internal/overlay"
	"github.com/fadedlamp42/freezeview/internal/pipe"
	"github.com/fadedlamp42/freezeview/internal/protocol"
	"github.com/fadedlamp42/freezeview/internal/tracker"
)

// run owns the overlay from launch to exit.
func run(cfg config, args launchArgs, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parent, parentName, err := openParent(ctx, args.pid)
	if err != nil {
		return err
	}
	logger.Info("overlay starting",
		zap.Int32("pid", args.pid),
		zap.String("process", parentName),
		zap.String("pipe", args.pipe),
		zap.Bool("window_tracking", tracker.Supported),
	)

	// bind before the UI starts so a bad pipe name fails fast
	listener, err := pipe.Bind(ctx, args.pipe)
	if err != nil {
		return err
	}
	defer listener.Close()

	trk := tracker.New(tracker.NewPlatform(), cfg.Poll, logger.Named("tracker"))
	driver := overlay.NewDriver(trk, cfg.BarWidth, overlay.WithLogger(logger.Named("overlay")))

	m := newModel(cfg, driver, args.pid, parentName)
	m.channelPath = listener.Path()
	p := tea.NewProgram(m, tea.WithAltScreen())

	wait := startWorkers(ctx, workers{
		listener:   listener,
		tracker:    trk,
		parent:     parent,
		pid:        args.pid,
		caption:    cfg.TargetCaption,
		parentPoll: cfg.ParentPoll,
	}, p, p.Quit, logger)

	_, runErr := p.Run()
	cancel()
	waitErr := wait()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", runErr)
	}
	if waitErr != nil {
		return waitErr
	}
	logger.Info("overlay stopped")
	return nil
}

// workers is everything the background goroutines need.
type workers struct {
	listener   *pipe.Listener
	tracker    *tracker.Tracker
	parent     liveness
	pid        int32
	caption    string
	parentPoll time.Duration
}

// startWorkers runs the channel reader, window discovery and parent watch
// under one errgroup. quit is called once, as soon as any worker fails or
// ctx ends. The returned wait joins all three; cancellation is not an
// error.
func startWorkers(ctx context.Context, w workers, s sender, quit func(), logger *zap.Logger) (wait func() error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serveChannel(gctx, w.listener, s, logger.Named("pipe"))
	})
	g.Go(func() error {
		return discoverWindow(gctx, w.tracker, w.pid, w.caption, s, logger.Named("tracker"))
	})
	g.Go(func() error {
		return watchParent(gctx, w.parent, w.parentPoll, s, logger.Named("parent"))
	})

	go func() {
		<-gctx.Done()
		quit()
	}()

	return func() error {
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// serveChannel accepts the single detector connection and forwards every
// decoded event. when the detector goes away the overlay keeps showing the
// last state until the parent exits.
func serveChannel(ctx context.Context, l *pipe.Listener, s sender, logger *zap.Logger) error {
	conn, err := l.Accept(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	release := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer release()

	logger.Info("detector connected", zap.String("path", l.Path()))
	s.Send(channelMsg{state: pipe.StateConnected, path: l.Path()})

	err = pipe.Consume(conn, func(ev protocol.Event) {
		s.Send(eventMsg{event: ev, at: time.Now()})
	}, logger)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err != nil {
		logger.Warn("channel failed", zap.Error(err))
	} else {
		logger.Info("detector disconnected")
	}
	s.Send(channelMsg{state: pipe.StateClosed, err: err})
	return nil
}

// discoverWindow waits for the target window, puts the pointer in it, and
// hands it to the UI for tracking.
func discoverWindow(ctx context.Context, t *tracker.Tracker, pid int32, caption string, s sender, logger *zap.Logger) error {
	h, err := t.FindWindow(ctx, pid, caption)
	if err != nil {
		return err
	}
	logger.Debug("tracking window", zap.Uintptr("hwnd", h.ID), zap.String("caption", caption))
	t.Activate(h)
	s.Send(windowFoundMsg{handle: h})
	return nil
}
