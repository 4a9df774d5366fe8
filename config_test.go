package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLaunchArgs(t *testing.T) {
	got, err := parseLaunchArgs([]string{"4242", "ui-profiler-1"})
	require.NoError(t, err)
	assert.Equal(t, launchArgs{pid: 4242, pipe: "ui-profiler-1"}, got)

	// extra arguments are ignored
	_, err = parseLaunchArgs([]string{"1", "p", "extra"})
	assert.NoError(t, err)
}

func TestParseLaunchArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"none", nil},
		{"pid only", []string{"123"}},
		{"not a number", []string{"abc", "pipe"}},
		{"zero pid", []string{"0", "pipe"}},
		{"negative pid", []string{"-3", "pipe"}},
		{"overflow", []string{"99999999999", "pipe"}},
		{"blank pipe", []string{"12", "  "}},
		{"path in pipe", []string{"12", "../etc/x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLaunchArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	t.Setenv("PROFILER_OVERLAY_CAPTION", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, defaultCaption, cfg.Caption)
	assert.Equal(t, "Visual Studio Preview", cfg.TargetCaption)
	assert.Equal(t, 150*time.Millisecond, cfg.Tick)
	assert.Equal(t, 100*time.Millisecond, cfg.Poll)
	assert.Equal(t, 1, cfg.BarWidth)
	assert.NotEmpty(t, cfg.LogFile)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROFILER_OVERLAY_CAPTION", "devenv #2")
	t.Setenv("FREEZEVIEW_TICK", "200ms")
	t.Setenv("FREEZEVIEW_BAR_WIDTH", "2")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "devenv #2", cfg.Caption)
	assert.Equal(t, 200*time.Millisecond, cfg.Tick)
	assert.Equal(t, 2, cfg.BarWidth)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("FREEZEVIEW_BAR_WIDTH", "0")
	_, err := loadConfig()
	assert.Error(t, err)

	t.Setenv("FREEZEVIEW_BAR_WIDTH", "1")
	t.Setenv("FREEZEVIEW_TICK", "soon")
	_, err = loadConfig()
	assert.Error(t, err)
}
