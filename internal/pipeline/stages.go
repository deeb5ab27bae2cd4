package pipeline

import (
	"liminal/internal/compassion"
	"liminal/internal/metacog"
	"liminal/internal/neuralsync"
	"liminal/internal/signal"
	"liminal/internal/silence"
	"liminal/internal/stabilizer"
)

// StabilizerStage wraps the hysteresis layer.
type StabilizerStage struct {
	S *stabilizer.Stabilizer
}

func (st *StabilizerStage) Name() string { return "stabilizer" }

func (st *StabilizerStage) Process(t *Turn) {
	st.S.Observe(t.Drift, t.Resonance)
	t.StabilizerState = st.S.State()
	t.Advice = st.S.Advice()
	t.Adjust.Pace += t.Advice.PaceDelta
	t.Adjust.PauseMs += t.Advice.PauseDeltaMs
	t.Statuses = append(t.Statuses, st.S.Status())
}

// SyncStage wraps the residual-correction layer.
type SyncStage struct {
	S *neuralsync.Sync
}

func (st *SyncStage) Name() string { return "sync" }

func (st *SyncStage) Process(t *Turn) {
	c := st.S.Step(t.Drift, t.Resonance, t.StabilizerState)
	t.Correction = c
	t.Adjust.Pace += c.PaceDelta
	t.Adjust.PauseMs += c.PauseDeltaMs
	t.Adjust.Resonance += c.ResonanceBoost
	t.Adjust.Drift -= c.DriftReduction
	t.Resonance = signal.Clamp01(t.Resonance + c.ResonanceBoost)
	t.Drift = signal.Clamp01(t.Drift - c.DriftReduction)
	t.Statuses = append(t.Statuses, st.S.Status(c))
}

// MetaStage wraps self-observation and its smoother.
type MetaStage struct {
	M  *metacog.MetaCognition
	Sm *metacog.Smoother
}

func (st *MetaStage) Name() string { return "metacognition" }

func (st *MetaStage) Process(t *Turn) {
	st.M.Observe(t.MeasuredDrift, t.MeasuredResonance, t.StabilizerState, t.Correction.Magnitude())
	if st.Sm != nil {
		st.Sm.Update(st.M)
	}
	t.Statuses = append(t.Statuses, "[meta] "+st.M.SelfAssess())
}

// CompassionStage wraps suffering detection and the kindness response.
type CompassionStage struct {
	D *compassion.Detector
}

func (st *CompassionStage) Name() string { return "compassion" }

func (st *CompassionStage) Process(t *Turn) {
	st.D.DetectSuffering(t.MeasuredDrift, t.MeasuredResonance,
		t.Signal.Tone, t.Signal.WPM, t.StabilizerState, t.RepeatedTheme)
	st.D.CalculateKindness(t.Rephrased,
		t.Correction.PaceDelta, t.Correction.PauseDeltaMs, t.Correction.ResonanceBoost)
	st.D.UpdateLevel()
	t.Suffering = st.D.UserSuffering

	if st.D.ShouldActivate() {
		adj := st.D.Adjustments()
		t.Adjust.Pace += adj.PaceAdjustment
		t.Adjust.PauseMs += adj.PauseAdjustmentMs
		t.Adjust.Resonance += adj.ResonanceBoost
		t.Adjust.Drift -= adj.DriftReduction
		t.Resonance = signal.Clamp01(t.Resonance + adj.ResonanceBoost)
		t.Drift = signal.Clamp01(t.Drift - adj.DriftReduction)
	}

	t.Statuses = append(t.Statuses, "[compassion] "+st.D.Status())
}

// SilenceStage wraps pause typing and the interruption policy.
type SilenceStage struct {
	T *silence.Tracker
}

func (st *SilenceStage) Name() string { return "silence" }

func (st *SilenceStage) Process(t *Turn) {
	if t.NewUserInput {
		st.T.Reset()
	}
	st.T.Observe(t.SilenceGap, silence.Context{
		Drift:           t.MeasuredDrift,
		Resonance:       t.MeasuredResonance,
		Tone:            t.Signal.Tone,
		Suffering:       t.Suffering,
		StabilizerState: t.StabilizerState,
	})
	t.Statuses = append(t.Statuses, st.T.Status())
}
