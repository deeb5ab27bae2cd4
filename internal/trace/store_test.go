package trace

import (
	"math"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "traces.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecallMissingTheme(t *testing.T) {
	s := openTemp(t)

	_, found, err := s.Recall("never seen")
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if found {
		t.Error("expected no trace for an unseen theme")
	}
}

func TestConsolidateAndRecall(t *testing.T) {
	s := openTemp(t)

	if err := s.Consolidate("breathing", 0.02, -0.01); err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}

	a, found, err := s.Recall("breathing")
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if !found {
		t.Fatal("expected a trace after consolidation")
	}
	if math.Abs(a.DriftBias-0.02) > 1e-9 {
		t.Errorf("drift bias = %f, want 0.02", a.DriftBias)
	}
	if math.Abs(a.ResonanceBias-(-0.01)) > 1e-9 {
		t.Errorf("res bias = %f, want -0.01", a.ResonanceBias)
	}
	if a.Visits != 1 {
		t.Errorf("visits = %d, want 1", a.Visits)
	}
	// score = 1 - (0.02+0.01)*0.5 = 0.985 on the first visit.
	if math.Abs(a.Stability-0.985) > 1e-9 {
		t.Errorf("stability = %f, want 0.985", a.Stability)
	}
}

func TestBiasesStayBounded(t *testing.T) {
	s := openTemp(t)

	for i := 0; i < 10; i++ {
		if err := s.Consolidate("storm", 0.2, -0.2); err != nil {
			t.Fatalf("Consolidate failed: %v", err)
		}
	}

	a, _, err := s.Recall("storm")
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if a.DriftBias > 0.2 || a.ResonanceBias < -0.2 {
		t.Errorf("biases escaped their bound: %+v", a)
	}
	if a.Visits != 10 {
		t.Errorf("visits = %d, want 10", a.Visits)
	}
}

func TestStabilityIsRunningAverage(t *testing.T) {
	s := openTemp(t)

	// First visit: score 1 - (0.1*0.5) = 0.95.
	if err := s.Consolidate("theme", 0.1, 0); err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	// Second visit: score 1 - (0.3*0.5) = 0.85; average 0.9.
	if err := s.Consolidate("theme", 0.3, 0); err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}

	a, _, err := s.Recall("theme")
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if math.Abs(a.Stability-0.9) > 1e-9 {
		t.Errorf("stability = %f, want 0.9", a.Stability)
	}
}

func TestZeroDeltaIsNoOp(t *testing.T) {
	s := openTemp(t)

	if err := s.FoldSyncDelta("quiet", 0, 0); err != nil {
		t.Fatalf("FoldSyncDelta failed: %v", err)
	}
	_, found, err := s.Recall("quiet")
	if err != nil {
		t.Fatalf("Recall failed: %v", err)
	}
	if found {
		t.Error("zero deltas must not create a trace")
	}
}

func TestSeedBiasBounds(t *testing.T) {
	res, drift := SeedBias(Advice{DriftBias: 0.2, ResonanceBias: -0.2, Stability: 1.0, Visits: 100})
	if res < -0.05 || res > 0.05 {
		t.Errorf("res seed %f out of range", res)
	}
	if drift < 0 || drift > 0.05 {
		t.Errorf("drift seed %f out of range", drift)
	}

	// A hot theme (negative stored bias) softens drift at the next boot.
	_, drift = SeedBias(Advice{DriftBias: -0.1, Stability: 0.5, Visits: 3})
	if drift <= 0 || drift > 0.05 {
		t.Errorf("drift seed = %f, want a positive softening seed", drift)
	}

	// A theme that ran calm never pushes drift up.
	_, drift = SeedBias(Advice{DriftBias: 0.1, Stability: 0.5, Visits: 3})
	if drift != 0 {
		t.Errorf("drift seed = %f, want 0 for a positive bias", drift)
	}
}

func TestNormalizeTheme(t *testing.T) {
	if got := NormalizeTheme("  Breathing Practice ", nil); got != "breathing practice" {
		t.Errorf("theme = %q", got)
	}
	if got := NormalizeTheme("", []string{" Hello There ", "more"}); got != "hello there" {
		t.Errorf("theme = %q", got)
	}
	if got := NormalizeTheme("", nil); got != "default" {
		t.Errorf("theme = %q", got)
	}
}
