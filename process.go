// parent process watch: the overlay lives exactly as long as the process
// that launched it. polls gopsutil rather than holding an OS handle so the
// same code runs on every platform.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// liveness is the part of *process.Process the watch needs.
type liveness interface {
	IsRunningWithContext(ctx context.Context) (bool, error)
}

// openParent resolves the monitored pid. a missing process is a startup
// error; a missing name is not.
func openParent(ctx context.Context, pid int32) (*process.Process, string, error) {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, "", fmt.Errorf("open process %d: %w", pid, err)
	}
	name, err := proc.NameWithContext(ctx)
	if err != nil {
		name = ""
	}
	return proc, name, nil
}

// watchParent polls until the process is gone, then posts parentExitedMsg.
// transient query errors are logged and retried on the next poll.
func watchParent(ctx context.Context, proc liveness, interval time.Duration, s sender, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		running, err := proc.IsRunningWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Debug("parent liveness query failed", zap.Error(err))
			continue
		}
		if !running {
			logger.Info("monitored process exited")
			s.Send(parentExitedMsg{})
			return nil
		}
	}
}
