// formatting helpers: durations, totals, placement text.
// no lipgloss dependency, pure data transformations.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fadedlamp42/freezeview/internal/tracker"
)

// formatTotal renders the cumulative freeze time, e.g. "12,340 ms".
func formatTotal(ms int64) string {
	return humanize.Comma(ms) + " ms"
}

// formatElapsed renders a running freeze: "850ms", "3.4s", "2m05s".
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d / time.Minute)
	secs := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%dm%02ds", mins, secs)
}

// formatPlacement describes where the overlay sits in logical units.
func formatPlacement(b tracker.Bounds, g tracker.Geometry) string {
	return fmt.Sprintf("%.2f,%.2f %.2f×%.2f @%ddpi (×%.3f)",
		b.Left, b.Top, b.Width, b.Height, g.DPI, g.Scale())
}

// truncOrPad truncates or right-pads a string to exactly width characters.
func truncOrPad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// axisLabel right-aligns a value into the chart gutter.
func axisLabel(v int64) string {
	return fmt.Sprintf("%*d", axisWidth-2, v)
}
