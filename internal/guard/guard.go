// Package guard is the last-resort output filter: when measured drift
// and resonance both breach their limits at once, the reply is softened
// before it reaches the synthesizer.
package guard

import "strings"

// Action is the guard's verdict for one turn.
type Action int

const (
	ActionNone Action = iota
	ActionWarn
	ActionRephrase
)

// String returns the lowercase label.
func (a Action) String() string {
	switch a {
	case ActionWarn:
		return "warn"
	case ActionRephrase:
		return "rephrase"
	default:
		return "none"
	}
}

// Guard softens replies when the conversation runs hot.
type Guard struct {
	DriftLimit     float64
	ResonanceLimit float64
	RephraseFactor float64
}

// New returns a guard with the given limits.
func New(driftLimit, resonanceLimit, rephraseFactor float64) *Guard {
	return &Guard{
		DriftLimit:     driftLimit,
		ResonanceLimit: resonanceLimit,
		RephraseFactor: rephraseFactor,
	}
}

// Check returns the verdict for the measured pair. A breach requires
// drift above its limit while resonance still holds at or above its
// own; otherwise the reply passes untouched.
func (g *Guard) Check(drift, resonance float64) Action {
	if drift > g.DriftLimit && resonance >= g.ResonanceLimit {
		if g.RephraseFactor > 0 {
			return ActionRephrase
		}
		return ActionWarn
	}
	return ActionNone
}

// Rephrase softens the text: exclamations become periods, doubled
// spaces collapse, and a recentering marker is appended.
func (g *Guard) Rephrase(text string) string {
	out := strings.ReplaceAll(text, "!", ".")
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "[recentered]"
	}
	return out + " [recentered]"
}
