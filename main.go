package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/fadedlamp42/freezeview/internal/logging"
)

const usage = `usage:
  freezeview <pid> <pipe_name>   show the overlay for a monitored process
  freezeview summarize [file]    replay a transcript and print JSON totals
`

func main() {
	// `freezeview summarize` subcommand: JSON output for scripting
	if len(os.Args) > 1 && os.Args[1] == "summarize" {
		fs := flag.NewFlagSet("summarize", flag.ExitOnError)
		_ = fs.Parse(os.Args[2:])

		if err := summarizeCommand(fs.Args(), os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	args, err := parseLaunchArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n%s", err, usage)
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// the terminal belongs to the UI, so logs go to a file
	logger := logging.NewOrNop(logging.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDev,
		OutputPaths: []string{cfg.LogFile},
	})
	defer func() { _ = logger.Sync() }()

	setProcessTitle(cfg.Caption)

	if err := run(cfg, args, logger); err != nil {
		logger.Error("overlay failed", zap.Error(err))
		_ = logger.Sync()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setProcessTitle sets tmux window name and xterm title.
func setProcessTitle(title string) {
	fmt.Printf("\033k%s\033\\", title)
	fmt.Printf("\033]2;%s\007", title)
}
