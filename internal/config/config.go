// Package config holds all liminal configuration: documented defaults,
// an optional YAML file, and LIMINAL_* environment overrides, resolved
// in that order. CLI flags are layered on top by the command.
//
// Malformed values never surface as errors from this package; they fall
// back to the documented defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all liminal configuration.
type Config struct {
	// Run shape
	Mode       string `yaml:"mode"`   // phone, headset, terminal
	Cycles     int    `yaml:"cycles"` // padded turn count
	Script     string `yaml:"script"` // ';'-separated utterances
	InputsPath string `yaml:"inputs_path"`

	// Output surfaces
	VizMode string `yaml:"viz_mode"` // compact, full
	Metrics bool   `yaml:"metrics"`
	Logging bool   `yaml:"logging"`
	LogDir  string `yaml:"log_dir"`

	// Shared baselines
	BaselineDrift     float64 `yaml:"baseline_drift"`
	BaselineResonance float64 `yaml:"baseline_resonance"`

	// Health surface
	Alarm  bool `yaml:"alarm"`
	Strict bool `yaml:"strict"`

	Guard      GuardConfig      `yaml:"guard"`
	Stabilizer StabilizerConfig `yaml:"stabilizer"`
	Sync       SyncConfig       `yaml:"sync"`
	Awareness  AwarenessConfig  `yaml:"awareness"`
	Compassion CompassionConfig `yaml:"compassion"`
	Silence    SilenceConfig    `yaml:"silence"`
	Memory     MemoryConfig     `yaml:"memory"`
	Emotive    EmotiveConfig    `yaml:"emotive"`
	Trace      TraceConfig      `yaml:"trace"`
}

// GuardConfig configures the soft guard.
type GuardConfig struct {
	Enabled        bool    `yaml:"enabled"`
	DriftLimit     float64 `yaml:"drift_limit"`
	ResonanceLimit float64 `yaml:"resonance_limit"`
	RephraseFactor float64 `yaml:"rephrase_factor"`
}

// StabilizerConfig configures the hysteresis layer.
type StabilizerConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Alpha        float64 `yaml:"alpha"`
	WarmDrift    float64 `yaml:"warm_drift"`
	HotDrift     float64 `yaml:"hot_drift"`
	LowResonance float64 `yaml:"low_resonance"`
	CoolSteps    int     `yaml:"cool_steps"`
	CalmBoost    float64 `yaml:"calm_boost"`
}

// SyncConfig configures the residual-correction layer.
type SyncConfig struct {
	Enabled bool    `yaml:"enabled"`
	LRFast  float64 `yaml:"lr_fast"`
	LRSlow  float64 `yaml:"lr_slow"`
	MaxStep float64 `yaml:"max_step"`
}

// AwarenessConfig configures the meta-cognition layer.
type AwarenessConfig struct {
	Enabled       bool    `yaml:"enabled"`
	SmootherAlpha float64 `yaml:"smoother_alpha"`
	Viz           bool    `yaml:"viz"`
}

// CompassionConfig configures the suffering detector.
type CompassionConfig struct {
	Enabled bool `yaml:"enabled"`
	Viz     bool `yaml:"viz"`
}

// SilenceConfig configures the pause classifier.
type SilenceConfig struct {
	Enabled       bool  `yaml:"enabled"`
	MinDurationMs int64 `yaml:"min_duration_ms"`
}

// MemoryConfig configures the per-device profile memory.
type MemoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// EmotiveConfig configures the cross-session emotive seed.
type EmotiveConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Path        string  `yaml:"path"`
	HalfLifeMin int     `yaml:"half_life_min"`
	WarmBias    float64 `yaml:"warm_bias"`
}

// TraceConfig configures the theme trace store.
type TraceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Mode:              "phone",
		Cycles:            5,
		VizMode:           "compact",
		Metrics:           true,
		Logging:           false,
		LogDir:            "logs",
		BaselineDrift:     0.35,
		BaselineResonance: 0.65,
		Alarm:             true,
		Strict:            false,
		Guard: GuardConfig{
			Enabled:        true,
			DriftLimit:     0.40,
			ResonanceLimit: 0.60,
			RephraseFactor: 0.2,
		},
		Stabilizer: StabilizerConfig{
			Enabled:      true,
			Alpha:        0.4,
			WarmDrift:    0.32,
			HotDrift:     0.42,
			LowResonance: 0.58,
			CoolSteps:    3,
			CalmBoost:    0.08,
		},
		Sync: SyncConfig{
			Enabled: true,
			LRFast:  0.5,
			LRSlow:  0.1,
			MaxStep: 0.05,
		},
		Awareness: AwarenessConfig{
			Enabled:       true,
			SmootherAlpha: 0.3,
			Viz:           false,
		},
		Compassion: CompassionConfig{Enabled: true, Viz: false},
		Silence: SilenceConfig{
			Enabled:       true,
			MinDurationMs: 1500,
		},
		Memory:  MemoryConfig{Enabled: false, Path: "device_memory.txt"},
		Emotive: EmotiveConfig{Enabled: false, Path: "emote_seed.jsonl", HalfLifeMin: 180, WarmBias: 0.02},
		Trace:   TraceConfig{Enabled: false, Path: "traces.db"},
	}
}

// Load reads the YAML config at path over the defaults. A missing file
// is not an error: the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Resolve loads the file (when path is non-empty) and applies the
// environment overrides. Malformed values fall back to defaults.
func Resolve(path string) Config {
	cfg := Default()
	if path != "" {
		if loaded, err := Load(path); err == nil {
			cfg = loaded
		} else {
			fmt.Fprintf(os.Stderr, "[config] %v, using defaults\n", err)
		}
	}
	cfg.applyEnvOverrides()
	cfg.Sanitize()
	return cfg
}

// applyEnvOverrides honors the LIMINAL_* environment surface.
func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("LIMINAL_MODE")); v != "" {
		c.Mode = strings.ToLower(v)
	}
	if v, ok := envInt("LIMINAL_CYCLES"); ok && v > 0 {
		c.Cycles = v
	}
	if v, ok := envBool("LIMINAL_ENABLE_METRICS"); ok {
		c.Metrics = v
	}
	if v := strings.TrimSpace(os.Getenv("LIMINAL_VIZ_MODE")); v != "" {
		if mode := strings.ToLower(v); mode == "compact" || mode == "full" {
			c.VizMode = mode
		}
	}
	if v, ok := envBool("LIMINAL_LOG"); ok {
		c.Logging = v
	}
	if v := strings.TrimSpace(os.Getenv("LIMINAL_LOG_DIR")); v != "" {
		c.LogDir = v
	}
	if v, ok := envFloat("LIMINAL_BASELINE_DRIFT"); ok {
		c.BaselineDrift = v
	}
	if v, ok := envFloat("LIMINAL_BASELINE_RES"); ok {
		c.BaselineResonance = v
	}
	if v, ok := envBool("LIMINAL_STRICT"); ok {
		c.Strict = v
	}
}

// Sanitize clamps numeric knobs back into their documented domains.
func (c *Config) Sanitize() {
	if c.Cycles < 1 {
		c.Cycles = 1
	}
	c.BaselineDrift = clamp01(c.BaselineDrift)
	c.BaselineResonance = clamp01(c.BaselineResonance)
	if c.Stabilizer.CoolSteps < 1 {
		c.Stabilizer.CoolSteps = 1
	}
	if c.Sync.MaxStep < 0 {
		c.Sync.MaxStep = -c.Sync.MaxStep
	}
	if c.Silence.MinDurationMs <= 0 {
		c.Silence.MinDurationMs = 1500
	}
	if c.Emotive.HalfLifeMin < 0 {
		c.Emotive.HalfLifeMin = 0
	}
	if c.VizMode != "compact" && c.VizMode != "full" {
		c.VizMode = "compact"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func envBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func envInt(key string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return 0, false
	}
	return v, true
}

func envFloat(key string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
