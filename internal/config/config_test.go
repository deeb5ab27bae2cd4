package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "phone", cfg.Mode)
	assert.Equal(t, 5, cfg.Cycles)
	assert.Equal(t, "compact", cfg.VizMode)
	assert.Equal(t, 0.35, cfg.BaselineDrift)
	assert.Equal(t, 0.65, cfg.BaselineResonance)

	assert.True(t, cfg.Guard.Enabled)
	assert.Equal(t, 0.40, cfg.Guard.DriftLimit)
	assert.Equal(t, 0.60, cfg.Guard.ResonanceLimit)

	assert.Equal(t, 0.4, cfg.Stabilizer.Alpha)
	assert.Equal(t, 0.32, cfg.Stabilizer.WarmDrift)
	assert.Equal(t, 0.42, cfg.Stabilizer.HotDrift)
	assert.Equal(t, 0.58, cfg.Stabilizer.LowResonance)
	assert.Equal(t, 3, cfg.Stabilizer.CoolSteps)

	assert.Equal(t, 0.5, cfg.Sync.LRFast)
	assert.Equal(t, 0.1, cfg.Sync.LRSlow)
	assert.Equal(t, 0.05, cfg.Sync.MaxStep)

	assert.Equal(t, int64(1500), cfg.Silence.MinDurationMs)

	// Persistent collaborators start disabled.
	assert.False(t, cfg.Memory.Enabled)
	assert.False(t, cfg.Emotive.Enabled)
	assert.False(t, cfg.Trace.Enabled)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liminal.yaml")
	data := `
mode: headset
cycles: 9
viz_mode: full
baseline_drift: 0.4
stabilizer:
  warm_drift: 0.3
  cool_steps: 5
silence:
  min_duration_ms: 2000
emotive:
  enabled: true
  half_life_min: 90
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "headset", cfg.Mode)
	assert.Equal(t, 9, cfg.Cycles)
	assert.Equal(t, "full", cfg.VizMode)
	assert.Equal(t, 0.4, cfg.BaselineDrift)
	assert.Equal(t, 0.3, cfg.Stabilizer.WarmDrift)
	assert.Equal(t, 5, cfg.Stabilizer.CoolSteps)
	assert.Equal(t, int64(2000), cfg.Silence.MinDurationMs)
	assert.True(t, cfg.Emotive.Enabled)
	assert.Equal(t, 90, cfg.Emotive.HalfLifeMin)

	// Untouched keys keep their defaults.
	assert.Equal(t, 0.42, cfg.Stabilizer.HotDrift)
	assert.Equal(t, 0.65, cfg.BaselineResonance)
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIMINAL_MODE", "Terminal")
	t.Setenv("LIMINAL_CYCLES", "12")
	t.Setenv("LIMINAL_ENABLE_METRICS", "false")
	t.Setenv("LIMINAL_VIZ_MODE", "full")
	t.Setenv("LIMINAL_LOG", "1")
	t.Setenv("LIMINAL_LOG_DIR", "/tmp/liminal-logs")
	t.Setenv("LIMINAL_BASELINE_DRIFT", "0.25")
	t.Setenv("LIMINAL_BASELINE_RES", "0.75")
	t.Setenv("LIMINAL_STRICT", "yes")

	cfg := Resolve("")

	assert.Equal(t, "terminal", cfg.Mode)
	assert.Equal(t, 12, cfg.Cycles)
	assert.False(t, cfg.Metrics)
	assert.Equal(t, "full", cfg.VizMode)
	assert.True(t, cfg.Logging)
	assert.Equal(t, "/tmp/liminal-logs", cfg.LogDir)
	assert.Equal(t, 0.25, cfg.BaselineDrift)
	assert.Equal(t, 0.75, cfg.BaselineResonance)
	assert.True(t, cfg.Strict)
}

func TestEnvMalformedValuesIgnored(t *testing.T) {
	t.Setenv("LIMINAL_CYCLES", "not-a-number")
	t.Setenv("LIMINAL_BASELINE_DRIFT", "much")
	t.Setenv("LIMINAL_STRICT", "maybe")
	t.Setenv("LIMINAL_VIZ_MODE", "hologram")

	cfg := Resolve("")

	assert.Equal(t, 5, cfg.Cycles)
	assert.Equal(t, 0.35, cfg.BaselineDrift)
	assert.False(t, cfg.Strict)
	assert.Equal(t, "compact", cfg.VizMode)
}

func TestSanitizeClampsDomains(t *testing.T) {
	cfg := Default()
	cfg.Cycles = -3
	cfg.BaselineDrift = 1.7
	cfg.BaselineResonance = -0.2
	cfg.Stabilizer.CoolSteps = 0
	cfg.Sync.MaxStep = -0.05
	cfg.Silence.MinDurationMs = 0
	cfg.VizMode = "hologram"

	cfg.Sanitize()

	assert.Equal(t, 1, cfg.Cycles)
	assert.Equal(t, 1.0, cfg.BaselineDrift)
	assert.Equal(t, 0.0, cfg.BaselineResonance)
	assert.Equal(t, 1, cfg.Stabilizer.CoolSteps)
	assert.Equal(t, 0.05, cfg.Sync.MaxStep)
	assert.Equal(t, int64(1500), cfg.Silence.MinDurationMs)
	assert.Equal(t, "compact", cfg.VizMode)
}
