package signal

import "strings"

const (
	fnvOffset = 0xcbf29ce484222325
	fnvPrime  = 0x100000001b3
)

// Analyze derives a deterministic (drift, resonance) pair from the
// utterance text. The hash stands in for a real semantic analyzer: the
// same text always yields the same reading, which keeps scripted runs
// reproducible.
func Analyze(text string) (drift, resonance float64) {
	var h uint64 = fnvOffset
	for i := 0; i < len(text); i++ {
		h ^= uint64(text[i])
		h *= fnvPrime
	}

	drift = float64((h>>11)&0xFFFF) / 65535.0
	resonance = float64((h>>27)&0xFFFF) / 65535.0
	return Clamp01(drift), Clamp01(resonance)
}

// ApplyToneBias nudges a measured pair by the detected tone. Calm
// delivery reads as slightly more present; energetic delivery as
// slightly less present and less stable.
func ApplyToneBias(drift, resonance float64, tone Tone) (float64, float64) {
	switch tone {
	case ToneCalm:
		resonance += 0.02
	case ToneEnergetic:
		resonance -= 0.01
		drift += 0.02
	}
	return Clamp01(drift), Clamp01(resonance)
}

// NormalizeText lowercases and trims an utterance for keying.
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
