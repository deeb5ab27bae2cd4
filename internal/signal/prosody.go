package signal

import "strings"

// Prosody is the simulated delivery analysis of one utterance.
type Prosody struct {
	WPM          float64
	Articulation float64
	Tone         Tone
}

const baseWPM = 150.0

// AnalyzeProsody simulates prosody extraction from text given the active
// device pace factor and pause length. Word count is computed but the
// heuristics currently key off pace and pause only.
func AnalyzeProsody(text string, paceFactor float64, pauseMs int64) Prosody {
	words := 0
	for _, w := range strings.Fields(text) {
		if w != "" {
			words++
		}
	}
	if words < 1 {
		words = 1
	}
	_ = words // reserved for future heuristics

	pause := float64(pauseMs)
	if pause < 20 {
		pause = 20
	}

	raw := (baseWPM * paceFactor * (40.0 / pause)) / 200.0
	wpm := Clamp01(raw) * 220.0

	pf := paceFactor
	if pf < 0.1 {
		pf = 0.1
	}
	articulation := Clamp01((0.85 / pf) * (pause / 80.0))

	tone := ToneNeutral
	switch {
	case wpm < 120:
		tone = ToneCalm
	case wpm > 180:
		tone = ToneEnergetic
	}

	return Prosody{WPM: wpm, Articulation: articulation, Tone: tone}
}

// ApplyArticulationHint folds a stabilizer articulation nudge into the
// measured articulation.
func ApplyArticulationHint(articulation, hint float64) float64 {
	return Clamp01(articulation + hint)
}
