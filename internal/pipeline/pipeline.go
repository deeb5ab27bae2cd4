// Package pipeline runs the per-turn self-regulation flow. The pipeline
// is built once at startup as an ordered list of enabled stages;
// disabled layers are simply absent, never nil-guarded mid-turn. Each
// stage reads the shared Turn context and the previous stage's output
// and never feeds back within a turn.
package pipeline

import (
	"time"

	"go.uber.org/zap"

	"liminal/internal/neuralsync"
	"liminal/internal/signal"
	"liminal/internal/stabilizer"
)

// Adjustments is the merged per-turn output: deltas the voice layer
// applies to pace, pause, resonance, and drift.
type Adjustments struct {
	Pace      float64
	PauseMs   int64
	Resonance float64
	Drift     float64
}

// Turn is the shared context one conversational turn flows through.
// The driving loop owns it exclusively; stages mutate it in place.
type Turn struct {
	Input  string
	Signal signal.Signal

	// Measured values are the pre-correction reading; Drift and
	// Resonance carry the running adjusted values.
	MeasuredDrift     float64
	MeasuredResonance float64
	Drift             float64
	Resonance         float64

	RepeatedTheme bool
	Rephrased     bool
	NewUserInput  bool
	SilenceGap    time.Duration

	StabilizerState stabilizer.State
	Advice          stabilizer.Advice
	Correction      neuralsync.Correction
	Suffering       float64

	Adjust   Adjustments
	Statuses []string
}

// Stage is one optional slot in the turn flow.
type Stage interface {
	Name() string
	Process(t *Turn)
}

// Pipeline executes the enabled stages in order, one turn at a time.
type Pipeline struct {
	stages []Stage
	log    *zap.Logger
}

// New assembles a pipeline from the enabled stages.
func New(log *zap.Logger, stages ...Stage) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{stages: stages, log: log}
}

// StageNames lists the enabled stages in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Process runs one turn through every enabled stage.
func (p *Pipeline) Process(t *Turn) {
	t.Drift = signal.Clamp01(t.Drift)
	t.Resonance = signal.Clamp01(t.Resonance)
	t.MeasuredDrift = signal.Clamp01(t.MeasuredDrift)
	t.MeasuredResonance = signal.Clamp01(t.MeasuredResonance)

	for _, s := range p.stages {
		s.Process(t)
		p.log.Debug("stage processed",
			zap.String("stage", s.Name()),
			zap.Float64("drift", t.Drift),
			zap.Float64("resonance", t.Resonance),
			zap.String("state", t.StabilizerState.String()),
		)
	}
}
