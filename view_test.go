package main

import (
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadedlamp42/freezeview/internal/aggregator"
	"github.com/fadedlamp42/freezeview/internal/pipe"
	"github.com/fadedlamp42/freezeview/internal/protocol"
	"github.com/fadedlamp42/freezeview/internal/tracker"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string { return ansiRe.ReplaceAllString(s, "") }

func plainLines(lines []string) [][]rune {
	out := make([][]rune, len(lines))
	for i, l := range lines {
		out[i] = []rune(plain(l))
	}
	return out
}

func history(values ...float64) aggregator.Snapshot {
	snap := aggregator.Snapshot{}
	for i, v := range values {
		snap.History = append(snap.History, aggregator.Sample{Tick: int64(i), DurationMs: v})
	}
	return snap
}

func TestRenderChartShape(t *testing.T) {
	lines := plainLines(renderChart(history(150, 50), 10, 8, 1))
	require.Len(t, lines, 8)
	for _, l := range lines {
		assert.Len(t, l, axisWidth+10)
	}

	assert.Equal(t, "150 ┤", string(lines[0][:axisWidth]))
	assert.Equal(t, "100 ┤", string(lines[2][:axisWidth]), "danger row")
	assert.Equal(t, "  0 ┤", string(lines[7][:axisWidth]))
	assert.Equal(t, "    │", string(lines[3][:axisWidth]))
}

func TestRenderChartRightAlignsNewest(t *testing.T) {
	lines := plainLines(renderChart(history(150, 50), 10, 8, 1))
	full, partial := axisWidth+8, axisWidth+9

	// 150 ms fills every row
	for _, l := range lines {
		assert.Equal(t, '█', l[full])
	}
	// 50 ms is 21 eighths: two full rows then five eighths
	assert.Equal(t, '█', lines[7][partial])
	assert.Equal(t, '█', lines[6][partial])
	assert.Equal(t, '▅', lines[5][partial])
	assert.Equal(t, ' ', lines[4][partial])
	assert.Equal(t, ' ', lines[0][partial])

	// empty slots on the danger row draw the danger line
	assert.Equal(t, '┄', lines[2][axisWidth])
	assert.Equal(t, ' ', lines[3][axisWidth])
}

func TestRenderChartBarWidth(t *testing.T) {
	lines := plainLines(renderChart(history(150), 11, 3, 2))
	require.Len(t, lines, 3)
	bottom := string(lines[2][axisWidth:])
	assert.Equal(t, "         ██", bottom, "one leading pad cell, bar two cells wide")
}

func TestRenderChartClipsToWidth(t *testing.T) {
	lines := plainLines(renderChart(history(10, 20, 30, 40, 150), 2, 8, 1))
	assert.Equal(t, '█', lines[0][axisWidth+1])
	assert.Equal(t, ' ', lines[0][axisWidth])
}

func TestChartCell(t *testing.T) {
	glyph, kind := chartCell(150, true, 7, 8, false)
	assert.Equal(t, '█', glyph)
	assert.Equal(t, cellHot, kind)

	glyph, kind = chartCell(50, true, 0, 8, false)
	assert.Equal(t, '█', glyph)
	assert.Equal(t, cellOK, kind)

	_, kind = chartCell(100, true, 0, 8, false)
	assert.Equal(t, cellOK, kind, "exactly on the danger line stays green")
	_, kind = chartCell(100.5, true, 0, 8, false)
	assert.Equal(t, cellHot, kind)

	glyph, _ = chartCell(0.5, true, 0, 8, false)
	assert.Equal(t, '▁', glyph, "any freeze time is visible")

	glyph, kind = chartCell(999, true, 7, 8, false)
	assert.Equal(t, '█', glyph, "clamped to the top")
	assert.Equal(t, cellHot, kind)

	glyph, kind = chartCell(0, false, 5, 8, true)
	assert.Equal(t, '┄', glyph)
	assert.Equal(t, cellDanger, kind)

	glyph, kind = chartCell(0, true, 0, 8, false)
	assert.Equal(t, ' ', glyph)
	assert.Equal(t, cellEmpty, kind)
}

func TestChartRowsFitTerminal(t *testing.T) {
	m := newTestModel()
	m.height = 40
	assert.Equal(t, chartRows, m.chartRows())
	m.height = 9
	assert.Equal(t, 4, m.chartRows())
	m.height = 2
	assert.Equal(t, minRows, m.chartRows())
}

func TestViewBeforeSize(t *testing.T) {
	assert.Contains(t, newTestModel().View(), "waiting for terminal size")
}

func TestViewShowsTotalsAndStatus(t *testing.T) {
	m := newTestModel()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 60, Height: 16})
	m, _ = step(t, m, channelMsg{state: pipe.StateConnected, path: "/tmp/fv.sock"})
	m, _ = step(t, m, eventMsg{event: protocol.Frozen(), at: t0})
	m, _ = step(t, m, eventMsg{event: protocol.Responsive(1250), at: t0.Add(1250 * time.Millisecond)})
	m, _ = step(t, m, tickMsg(t0.Add(1300*time.Millisecond)))

	out := plain(m.View())
	assert.Contains(t, out, "UI responsiveness > devenv.exe (4242)")
	assert.Contains(t, out, "Total UI freezes > 100 ms: 1,250 ms")
	assert.Contains(t, out, `waiting for window "Visual Studio Preview"...`)
	assert.Contains(t, out, "connected, 2 events")
	assert.Contains(t, out, "recovered")
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), viewChrome+chartRows)
}

func TestBannerPhases(t *testing.T) {
	m := newTestModel()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 60, Height: 16})
	assert.Contains(t, plain(m.renderBanner()), "responsive")

	m, _ = step(t, m, eventMsg{event: protocol.Frozen(), at: t0})
	for i := 1; i <= 6; i++ {
		m, _ = step(t, m, tickMsg(t0.Add(time.Duration(i)*time.Second)))
	}
	banner := plain(m.renderBanner())
	assert.Contains(t, banner, "UI FROZEN")
	assert.Contains(t, banner, "6.0s")
}

func TestPlacementLine(t *testing.T) {
	m := newTestModel()
	m.windowFound = true
	assert.Contains(t, plain(m.renderPlacement()), "measuring")

	g := tracker.Geometry{LeftPx: 100, TopPx: 50, WidthPx: 800, HeightPx: 600, DPI: 144}
	m.frame.Geometry = g
	m.frame.Placement = g.Logical()
	m.frame.Placed = true
	assert.Equal(t, " overlay 66.67,33.33 533.33×400.00 @144dpi (×0.667)", plain(m.renderPlacement()))

	m.frame.Stale = true
	assert.Contains(t, plain(m.renderPlacement()), "(stale)")
}

func TestFooterReportsDisconnect(t *testing.T) {
	m := newTestModel()
	m.channelPath = "/tmp/fv.sock"
	assert.Contains(t, plain(m.renderFooter()), "listening on /tmp/fv.sock")

	m.channel = pipe.StateClosed
	assert.Contains(t, plain(m.renderFooter()), "detector disconnected")

	m.channelErr = &pipe.ChannelError{Op: "read", Cause: assert.AnError}
	assert.Contains(t, plain(m.renderFooter()), "disconnected: ")
}
