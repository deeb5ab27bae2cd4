package metacog

import (
	"testing"

	"liminal/internal/stabilizer"
)

func TestChaoticTurnProducesDoubt(t *testing.T) {
	m := New()
	m.Observe(0.9, 0.2, stabilizer.Overheat, 0.5)

	if m.SelfDrift != 1.0 {
		t.Errorf("SelfDrift = %f, want 1.0 for a large correction", m.SelfDrift)
	}
	if m.SelfResonance != 0.0 {
		t.Errorf("SelfResonance = %f, want 0.0 under the Overheat offset", m.SelfResonance)
	}
	if m.Confidence >= 0.5 {
		t.Errorf("Confidence = %f, want < 0.5", m.Confidence)
	}
	if m.Doubt <= 0.5 {
		t.Errorf("Doubt = %f, want > 0.5", m.Doubt)
	}
	if !m.ShouldExpressDoubt() {
		t.Error("expected doubt to be expressed")
	}
	if m.IsClearAndStable() {
		t.Error("chaotic turn must not read as clear and stable")
	}
}

func TestCalmRunBuildsConfidenceAndClarity(t *testing.T) {
	m := New()
	for i := 0; i < 5; i++ {
		m.Observe(0.15, 0.9, stabilizer.Normal, 0.02)
	}

	if m.Confidence <= 0.7 {
		t.Errorf("Confidence = %f, want > 0.7", m.Confidence)
	}
	if m.Clarity <= 0.6 {
		t.Errorf("Clarity = %f, want > 0.6", m.Clarity)
	}
	if m.Doubt >= 0.4 {
		t.Errorf("Doubt = %f, want < 0.4", m.Doubt)
	}
	if !m.IsClearAndStable() {
		t.Error("expected clear and stable after a calm run")
	}
	if m.ShouldExpressDoubt() {
		t.Error("calm run must not express doubt")
	}
}

func TestDoubtNeverBelowFloor(t *testing.T) {
	m := New()
	m.Observe(0.0, 1.0, stabilizer.Normal, 0)

	if m.Confidence != 1.0 {
		t.Errorf("Confidence = %f, want 1.0", m.Confidence)
	}
	if m.Doubt != 0.1 {
		t.Errorf("Doubt = %f, want floor 0.1", m.Doubt)
	}
}

func TestClarityBonusBounded(t *testing.T) {
	m := New()
	for i := 0; i < 20; i++ {
		m.Observe(0.5, 0.5, stabilizer.Normal, 0)
	}
	// Confidence = 0.25; clarity bonus caps at 0.3.
	if m.Clarity > 0.5500001 {
		t.Errorf("Clarity = %f, bonus not capped at 0.3", m.Clarity)
	}
}

func TestStateOffsets(t *testing.T) {
	cases := []struct {
		state stabilizer.State
		want  float64
	}{
		{stabilizer.Normal, 0.6},
		{stabilizer.Warming, 0.5},
		{stabilizer.Overheat, 0.3},
		{stabilizer.Cooldown, 0.4},
	}
	for _, tc := range cases {
		t.Run(tc.state.String(), func(t *testing.T) {
			m := New()
			m.Observe(0.5, 0.5, tc.state, 0)
			if diff := m.SelfResonance - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("SelfResonance = %f, want %f", m.SelfResonance, tc.want)
			}
		})
	}
}

func TestSmoother(t *testing.T) {
	s := NewSmoother(0.3)
	m := New()
	m.Observe(0.0, 1.0, stabilizer.Normal, 0)
	s.Update(m)

	selfDrift, conf := s.Metrics()
	if selfDrift != 0 {
		t.Errorf("ema self drift = %f, want 0", selfDrift)
	}
	// 0.3*1.0 + 0.7*0.5 = 0.65.
	if diff := conf - 0.65; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ema confidence = %f, want 0.65", conf)
	}
	if s.NeedsMoreAwareness() {
		t.Error("confident smoothed view must not ask for more awareness")
	}
}

func TestSmootherFlagsLowConfidence(t *testing.T) {
	s := NewSmoother(0.5)
	m := New()
	m.Observe(0.9, 0.2, stabilizer.Overheat, 0.5)
	s.Update(m)

	if !s.NeedsMoreAwareness() {
		t.Error("expected more awareness after a chaotic observation")
	}
}
