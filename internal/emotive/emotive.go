// Package emotive persists a seed of the session's final emotional
// state and replays it at the next boot, decayed toward rest values by
// the time elapsed since it was written.
package emotive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Seed is the persisted end-of-session emotional state.
type Seed struct {
	EMADrift     float64 `json:"ema_drift"`
	EMAResonance float64 `json:"ema_res"`
	Tone         string  `json:"tone"`
	WPM          float64 `json:"wpm"`
	UnixSecs     int64   `json:"ts"`
}

// Rest values the seed decays toward as it ages.
const (
	restDrift     = 0.30
	restResonance = 0.70
	restWPM       = 160.0
)

// LoadLatest returns the newest parseable seed from the JSONL file.
func LoadLatest(path string) (Seed, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, false
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		var seed Seed
		if err := json.Unmarshal([]byte(lines[i]), &seed); err == nil {
			return seed, true
		}
	}
	return Seed{}, false
}

// Append writes the seed as one JSONL line, creating the file and its
// directory as needed.
func Append(path string, seed Seed) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create emotive dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open emotive seed file: %w", err)
	}
	defer f.Close()

	seed.EMADrift = clamp01(seed.EMADrift)
	seed.EMAResonance = clamp01(seed.EMAResonance)

	data, err := json.Marshal(seed)
	if err != nil {
		return fmt.Errorf("failed to encode seed: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append seed: %w", err)
	}
	return nil
}

// Decay returns the seed interpolated toward rest values. k halves per
// halfLifeMin minutes of age; a zero half-life discards the seed
// entirely. A stale tone falls back to Neutral.
func Decay(seed Seed, nowUnix int64, halfLifeMin int) Seed {
	elapsed := nowUnix - seed.UnixSecs
	if elapsed < 0 {
		elapsed = 0
	}
	elapsedMins := float64(elapsed) / 60.0

	k := 0.0
	if halfLifeMin > 0 {
		k = math.Pow(0.5, elapsedMins/float64(halfLifeMin))
	}

	tone := seed.Tone
	if k <= 0.3 {
		tone = "Neutral"
	}

	return Seed{
		EMADrift:     lerp(restDrift, seed.EMADrift, k),
		EMAResonance: lerp(restResonance, seed.EMAResonance, k),
		Tone:         tone,
		WPM:          lerp(restWPM, seed.WPM, k),
		UnixSecs:     seed.UnixSecs,
	}
}

// ApplyBootBias warms the decayed resonance by the configured bias.
func ApplyBootBias(emaRes float64, warmBias float64) float64 {
	v := emaRes + warmBias
	if v > 1 {
		v = 1
	}
	return v
}

// lerp interpolates from target back to value by weight k.
func lerp(target, value, k float64) float64 {
	return target + (value-target)*k
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
