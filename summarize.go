// `freezeview summarize`: decode a wire transcript offline and report the
// same totals the overlay would show, as JSON.

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fadedlamp42/freezeview/internal/aggregator"
	"github.com/fadedlamp42/freezeview/internal/pipe"
	"github.com/fadedlamp42/freezeview/internal/protocol"
)

// scanLines adapts a bufio.Scanner to pipe.LineReader.
type scanLines struct {
	sc    *bufio.Scanner
	lines int
}

func (s *scanLines) ReadLine() (string, error) {
	if s.sc.Scan() {
		s.lines++
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// transcriptSummary is the result of replaying one transcript.
type transcriptSummary struct {
	Lines       int   `json:"lines"`
	Events      int   `json:"events"`
	Dropped     int   `json:"dropped"`
	Freezes     int   `json:"freezes"`
	TotalMs     int64 `json:"total_ms"`
	LongestMs   int64 `json:"longest_ms"`
	FrozenAtEnd bool  `json:"frozen_at_end"`
}

// summarize replays r through the aggregator. the transcript carries no
// clock, so each recovery advances a synthetic one by its duration.
func summarize(r io.Reader, logger *zap.Logger) (transcriptSummary, error) {
	agg := aggregator.New(1)
	src := &scanLines{sc: bufio.NewScanner(r)}
	clock := time.Unix(0, 0)

	var sum transcriptSummary
	err := pipe.Consume(src, func(ev protocol.Event) {
		sum.Events++
		if ev.Kind == protocol.KindResponsive {
			clock = clock.Add(time.Duration(ev.DurationMs) * time.Millisecond)
		}
		if agg.Apply(ev, clock) != aggregator.Recovered {
			return
		}
		if ev.DurationMs >= aggregator.FreezeThreshold {
			sum.Freezes++
			sum.LongestMs = max(sum.LongestMs, ev.DurationMs)
		}
	}, logger)
	if err != nil {
		return transcriptSummary{}, fmt.Errorf("read transcript: %w", err)
	}

	sum.Lines = src.lines
	sum.Dropped = src.lines - sum.Events
	sum.TotalMs = agg.TotalMs()
	sum.FrozenAtEnd = agg.Frozen()
	return sum, nil
}

// summarizeCommand reads the named file, or stdin when none is given.
func summarizeCommand(args []string, stdin io.Reader, stdout io.Writer) error {
	in := stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	sum, err := summarize(in, zap.NewNop())
	if err != nil {
		return err
	}
	out, _ := json.MarshalIndent(sum, "", "  ")
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}
