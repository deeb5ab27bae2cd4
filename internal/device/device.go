// Package device maps a device mode string onto a playback profile.
package device

import "strings"

// Mode identifies the simulated output device.
type Mode int

const (
	ModePhone Mode = iota
	ModeHeadset
	ModeTerminal
)

// String returns the canonical label.
func (m Mode) String() string {
	switch m {
	case ModeHeadset:
		return "headset"
	case ModeTerminal:
		return "terminal"
	default:
		return "phone"
	}
}

// Profile is the per-device playback tuning.
type Profile struct {
	GainDB     float64
	PaceFactor float64
	PauseMs    int64
}

// Detect parses a mode string; unknown values default to phone.
func Detect(mode string) Mode {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "headset":
		return ModeHeadset
	case "terminal":
		return ModeTerminal
	default:
		return ModePhone
	}
}

// ProfileFor returns the playback profile for a mode.
func ProfileFor(mode Mode) Profile {
	switch mode {
	case ModeHeadset:
		return Profile{GainDB: 0.0, PaceFactor: 1.00, PauseMs: 40}
	case ModeTerminal:
		return Profile{GainDB: 1.5, PaceFactor: 0.95, PauseMs: 80}
	default:
		return Profile{GainDB: -2.0, PaceFactor: 1.05, PauseMs: 60}
	}
}
