package viz

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBarWidthAndFill(t *testing.T) {
	if got := Bar(0); got != strings.Repeat(".", 19) {
		t.Errorf("Bar(0) = %q", got)
	}
	if got := Bar(1); got != strings.Repeat("#", 19) {
		t.Errorf("Bar(1) = %q", got)
	}

	half := Bar(0.5)
	if len(half) != 19 {
		t.Errorf("Bar(0.5) len = %d, want 19", len(half))
	}
	if fill := strings.Count(half, "#"); fill != 10 {
		t.Errorf("Bar(0.5) fill = %d, want 10", fill)
	}

	// Out-of-range values clamp instead of panicking.
	if got := Bar(-2); got != strings.Repeat(".", 19) {
		t.Errorf("Bar(-2) = %q", got)
	}
	if got := Bar(7); got != strings.Repeat("#", 19) {
		t.Errorf("Bar(7) = %q", got)
	}
}

func TestSparkline(t *testing.T) {
	got := Sparkline([]float64{0, 0.5, 1, -3, 9})
	if utf8.RuneCountInString(got) != 5 {
		t.Errorf("rune count = %d, want 5", utf8.RuneCountInString(got))
	}
	runes := []rune(got)
	if runes[0] != ' ' {
		t.Errorf("zero glyph = %q, want space", runes[0])
	}
	if runes[2] != '█' {
		t.Errorf("full glyph = %q, want block", runes[2])
	}
	if runes[3] != ' ' || runes[4] != '█' {
		t.Error("out-of-range values must clamp")
	}
}

func TestSparklineEmpty(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Errorf("Sparkline(nil) = %q, want empty", got)
	}
}

func TestCompactTurnMentionsState(t *testing.T) {
	line := CompactTurn(3, 0.4, 0.6, "Warming")
	if !strings.Contains(line, "turn 03") {
		t.Errorf("line = %q, want turn index", line)
	}
	if !strings.Contains(line, "Warming") {
		t.Errorf("line = %q, want state", line)
	}
}

func TestFullTableTruncatesLongUtterances(t *testing.T) {
	rows := []TableRow{
		{Index: 1, Utterance: strings.Repeat("x", 60), Drift: 0.3, Resonance: 0.7, State: "Normal", Guard: "none"},
		{Index: 2, Utterance: "short", Drift: 0.5, Resonance: 0.5, State: "Warming", Guard: "rephrase"},
	}
	table := FullTable(rows)

	if strings.Contains(table, strings.Repeat("x", 30)) {
		t.Error("long utterances must be truncated")
	}
	if !strings.Contains(table, "...") {
		t.Error("truncation marker missing")
	}
	if !strings.Contains(table, "short") || !strings.Contains(table, "rephrase") {
		t.Errorf("table missing row content:\n%s", table)
	}
}

func TestSessionSummaryContainsBothSeries(t *testing.T) {
	out := SessionSummary([]float64{0.2, 0.4}, []float64{0.8, 0.6})
	if !strings.Contains(out, "drift") || !strings.Contains(out, "res") {
		t.Errorf("summary missing labels:\n%s", out)
	}
}
