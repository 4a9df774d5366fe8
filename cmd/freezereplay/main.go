// freezereplay plays the detector side of the overlay channel: it names a
// pipe, optionally launches the overlay against its own pid, dials, and
// streams transitions from a transcript or from a random simulation.

package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fadedlamp42/freezeview/internal/logging"
	"github.com/fadedlamp42/freezeview/internal/pipe"
)

func main() {
	pipeName := flag.String("pipe", "", "pipe name (default: random)")
	launch := flag.String("launch", "", "overlay binary to start against this process")
	in := flag.String("in", "-", "transcript to replay, - for stdin")
	simulate := flag.Bool("simulate", false, "generate random freezes instead of reading a transcript")
	count := flag.Int("count", 0, "simulated freezes before exiting (0 = until interrupted)")
	gap := flag.Duration("gap", 2*time.Second, "mean responsive gap between freezes, or delay between transcript lines")
	maxFreeze := flag.Duration("max-freeze", 1500*time.Millisecond, "longest simulated freeze")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger := logging.NewOrNop(logging.Config{Level: level, Development: true})
	defer func() { _ = logger.Sync() }()

	name := *pipeName
	if name == "" {
		name = "freezeview-" + uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := replay(ctx, replayOptions{
		name:      name,
		launch:    *launch,
		in:        *in,
		simulate:  *simulate,
		count:     *count,
		gap:       *gap,
		maxFreeze: *maxFreeze,
	}, logger); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type replayOptions struct {
	name      string
	launch    string
	in        string
	simulate  bool
	count     int
	gap       time.Duration
	maxFreeze time.Duration
}

func replay(ctx context.Context, opts replayOptions, logger *zap.Logger) error {
	if opts.launch != "" {
		// the overlay watches our pid and exits with us
		cmd := exec.Command(opts.launch, strconv.Itoa(os.Getpid()), opts.name)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("launch overlay: %w", err)
		}
		go func() { _ = cmd.Wait() }()
	} else {
		fmt.Fprintf(os.Stderr, "start the overlay with:\n  freezeview %d %s\n", os.Getpid(), opts.name)
	}

	w, err := pipe.Dial(ctx, opts.name)
	if err != nil {
		return fmt.Errorf("dial %s: %w", opts.name, err)
	}
	defer w.Close()
	logger.Info("connected", zap.String("pipe", opts.name))

	if opts.simulate {
		rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(os.Getpid())))
		sim := simulator{rng: rng, gap: opts.gap, maxFreeze: opts.maxFreeze}
		n, err := sim.run(ctx, w, opts.count, sleepCtx)
		logger.Info("simulation finished", zap.Int("freezes", n))
		return err
	}

	src := os.Stdin
	if opts.in != "-" {
		f, err := os.Open(opts.in)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	n, err := forward(ctx, src, w, opts.gap, sleepCtx)
	logger.Info("transcript replayed", zap.Int("lines", n))
	return err
}
