// launch arguments, environment config, and chart constants.
//
// the overlay is started by the detector with two positional arguments:
// the pid to watch and the pipe name to listen on. everything else comes
// from the environment (optionally seeded from a .env file).

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/fadedlamp42/freezeview/internal/aggregator"
)

// chart scale, in milliseconds of freeze per tick
const (
	chartMaxMs = 150
	dangerMs   = aggregator.FreezeThreshold
)

// chart layout
const (
	axisWidth  = 5 // "150 ┤"
	chartRows  = 8 // preferred height; shrinks with the terminal
	minRows    = 3
	viewChrome = 5 // header + banner + total + placement + status
)

const defaultCaption = "UI responsiveness"

// config holds everything read from the environment.
type config struct {
	Caption       string        `envconfig:"PROFILER_OVERLAY_CAPTION"`
	TargetCaption string        `envconfig:"FREEZEVIEW_TARGET_CAPTION" default:"Visual Studio Preview"`
	Tick          time.Duration `envconfig:"FREEZEVIEW_TICK" default:"150ms"`
	Poll          time.Duration `envconfig:"FREEZEVIEW_POLL" default:"100ms"`
	ParentPoll    time.Duration `envconfig:"FREEZEVIEW_PARENT_POLL" default:"500ms"`
	BarWidth      int           `envconfig:"FREEZEVIEW_BAR_WIDTH" default:"1"`
	LogLevel      string        `envconfig:"FREEZEVIEW_LOG_LEVEL" default:"info"`
	LogFile       string        `envconfig:"FREEZEVIEW_LOG_FILE"`
	LogDev        bool          `envconfig:"FREEZEVIEW_LOG_DEV" default:"false"`
}

// loadConfig reads the environment. a missing .env file is fine.
func loadConfig() (config, error) {
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.Caption) == "" {
		cfg.Caption = defaultCaption
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(os.TempDir(), "freezeview.log")
	}
	if cfg.Tick <= 0 {
		return config{}, fmt.Errorf("FREEZEVIEW_TICK must be positive, got %s", cfg.Tick)
	}
	if cfg.Poll <= 0 || cfg.ParentPoll <= 0 {
		return config{}, errors.New("poll intervals must be positive")
	}
	if cfg.BarWidth < 1 {
		return config{}, fmt.Errorf("FREEZEVIEW_BAR_WIDTH must be at least 1, got %d", cfg.BarWidth)
	}
	return cfg, nil
}

// launchArgs are the positional arguments passed by the detector.
type launchArgs struct {
	pid  int32
	pipe string
}

// parseLaunchArgs validates `<pid> <pipe_name>`.
func parseLaunchArgs(args []string) (launchArgs, error) {
	if len(args) < 2 {
		return launchArgs{}, errors.New("expected <pid> <pipe_name>")
	}
	pid, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil || pid <= 0 {
		return launchArgs{}, fmt.Errorf("invalid pid %q", args[0])
	}
	name := strings.TrimSpace(args[1])
	if name == "" {
		return launchArgs{}, errors.New("pipe name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return launchArgs{}, fmt.Errorf("pipe name %q must not contain path separators", name)
	}
	return launchArgs{pid: int32(pid), pipe: name}, nil
}
