// rendering: header, freeze banner, strip chart, totals, and footer.
//
// styles follow otop's visual encoding: green = responsive, yellow =
// transitional, red = frozen or over the danger line, dim = chrome.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fadedlamp42/freezeview/internal/aggregator"
	"github.com/fadedlamp42/freezeview/internal/overlay"
	"github.com/fadedlamp42/freezeview/internal/pipe"
)

// -- styles --

var (
	// structural
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// status colors
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))  // green
	transStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))  // yellow
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")) // bright white
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))  // red

	bannerStyle = lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15")).Bold(true)
)

const totalLabel = "Total UI freezes > 100 ms:"

// eighth-block glyphs, index = filled eighths of a cell
var blocks = []rune(" ▁▂▃▄▅▆▇█")

// cell kinds in the chart, each maps to one style
type cellKind int

const (
	cellEmpty cellKind = iota
	cellDanger
	cellOK
	cellHot
)

func (k cellKind) style() lipgloss.Style {
	switch k {
	case cellDanger:
		return dimStyle
	case cellOK:
		return activeStyle
	case cellHot:
		return errorStyle
	default:
		return lipgloss.NewStyle()
	}
}

func (m model) renderView() string {
	if !m.ready {
		return "\n  waiting for terminal size...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderBanner())
	b.WriteString("\n")
	for _, line := range renderChart(m.frame.Snapshot, m.chartWidth(), m.chartRows(), m.cfg.BarWidth) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.renderTotal())
	b.WriteString("\n")
	b.WriteString(m.renderPlacement())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// chartRows shrinks the chart to fit short terminals.
func (m model) chartRows() int {
	return min(chartRows, max(minRows, m.height-viewChrome))
}

func (m model) chartWidth() int {
	return max(1, m.width-axisWidth)
}

// -- header --

func (m model) renderHeader() string {
	crumb := " " + m.cfg.Caption
	if m.parentName != "" {
		crumb += fmt.Sprintf(" > %s (%d)", m.parentName, m.parentPID)
	} else {
		crumb += fmt.Sprintf(" > pid %d", m.parentPID)
	}
	clock := m.now
	if clock.IsZero() {
		clock = time.Now()
	}
	right := clock.Format("15:04:05") + " "
	pad := max(0, m.width-len([]rune(crumb))-len(right))
	return headerStyle.Render(truncOrPad(crumb+strings.Repeat(" ", pad)+right, m.width))
}

// -- freeze banner --

func (m model) renderBanner() string {
	snap := m.frame.Snapshot
	switch m.frame.Phase {
	case overlay.PhaseShowing:
		text := " UI FROZEN "
		shown := max(1, int(float64(len(text))*m.frame.Progress+0.5))
		return bannerStyle.Render(text[:min(shown, len(text))])
	case overlay.PhaseFrozen:
		elapsed := time.Duration(0)
		if !snap.FreezeStart.IsZero() {
			elapsed = m.now.Sub(snap.FreezeStart)
		}
		return bannerStyle.Render(" UI FROZEN ") + " " + errorStyle.Render(formatElapsed(elapsed))
	case overlay.PhaseResolving:
		return transStyle.Render(" recovered")
	default:
		return activeStyle.Render(" responsive")
	}
}

// -- strip chart --

// renderChart draws the rolling history as rows of eighth-block bars,
// newest sample at the right edge. each sample is barWidth cells wide.
func renderChart(snap aggregator.Snapshot, width, rows, barWidth int) []string {
	barWidth = max(1, barWidth)
	rows = max(1, rows)
	slots := max(1, width/barWidth)

	// sample values aligned to the right edge
	values := make([]float64, slots)
	present := make([]bool, slots)
	hist := snap.History
	if len(hist) > slots {
		hist = hist[len(hist)-slots:]
	}
	offset := slots - len(hist)
	for i, s := range hist {
		values[offset+i] = s.DurationMs
		present[offset+i] = true
	}

	dangerRow := int(float64(dangerMs) / chartMaxMs * float64(rows))
	lead := width - slots*barWidth

	lines := make([]string, 0, rows)
	for r := rows - 1; r >= 0; r-- {
		var line strings.Builder
		line.WriteString(dimStyle.Render(axisFor(r, rows, dangerRow)))
		line.WriteString(strings.Repeat(" ", max(0, lead)))

		var runKind cellKind
		var run strings.Builder
		flush := func() {
			if run.Len() > 0 {
				line.WriteString(runKind.style().Render(run.String()))
				run.Reset()
			}
		}
		for i := range slots {
			glyph, kind := chartCell(values[i], present[i], r, rows, r == dangerRow)
			if kind != runKind {
				flush()
				runKind = kind
			}
			for range barWidth {
				run.WriteRune(glyph)
			}
		}
		flush()
		lines = append(lines, line.String())
	}
	return lines
}

// chartCell picks the glyph for one sample at row r (0 is the bottom).
func chartCell(v float64, present bool, r, rows int, onDangerLine bool) (rune, cellKind) {
	eighths := 0
	if present && v > 0 {
		filled := int(min(v, chartMaxMs) / chartMaxMs * float64(rows*8))
		if filled == 0 {
			filled = 1
		}
		eighths = min(8, max(0, filled-r*8))
	}
	if eighths == 0 {
		if onDangerLine {
			return '┄', cellDanger
		}
		return ' ', cellEmpty
	}
	if v > float64(dangerMs) {
		return blocks[eighths], cellHot
	}
	return blocks[eighths], cellOK
}

// axisFor labels the top, danger, and bottom rows.
func axisFor(r, rows, dangerRow int) string {
	switch {
	case r == rows-1:
		return axisLabel(chartMaxMs) + " ┤"
	case r == dangerRow:
		return axisLabel(dangerMs) + " ┤"
	case r == 0:
		return axisLabel(0) + " ┤"
	default:
		return strings.Repeat(" ", axisWidth-2) + " │"
	}
}

// -- totals --

func (m model) renderTotal() string {
	total := formatTotal(m.frame.Snapshot.TotalMs)
	style := idleStyle
	if m.frame.Snapshot.TotalMs > 0 {
		style = errorStyle
	}
	return " " + keyStyle.Render(totalLabel) + " " + style.Render(total)
}

// -- placement --

func (m model) renderPlacement() string {
	switch {
	case !m.windowFound:
		return dimStyle.Render(fmt.Sprintf(" waiting for window %q...", m.cfg.TargetCaption))
	case !m.frame.Placed:
		return dimStyle.Render(" window found, measuring...")
	}
	line := " overlay " + formatPlacement(m.frame.Placement, m.frame.Geometry)
	if m.frame.Stale {
		return transStyle.Render(line + " (stale)")
	}
	return idleStyle.Render(line)
}

// -- footer --

func (m model) renderFooter() string {
	var status string
	switch m.channel {
	case pipe.StateConnected:
		status = activeStyle.Render(fmt.Sprintf(" connected, %d events", m.events))
	case pipe.StateClosed:
		if m.channelErr != nil {
			status = errorStyle.Render(" disconnected: " + m.channelErr.Error())
		} else {
			status = transStyle.Render(" detector disconnected")
		}
	default:
		status = dimStyle.Render(" listening on " + m.channelPath)
	}
	return status + helpStyle.Render("  q quit")
}
