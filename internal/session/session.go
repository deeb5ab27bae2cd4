// Package session writes per-turn JSONL snapshots for offline analysis.
// Each run gets its own file named by session id; optional layers are
// pointer sub-structs so a disabled layer is simply absent from the
// line.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// StabilizerSnapshot captures the hysteresis layer's turn state.
type StabilizerSnapshot struct {
	State        string  `json:"state"`
	EMADrift     float64 `json:"ema_drift"`
	EMAResonance float64 `json:"ema_res"`
}

// SyncSnapshot captures the residual-correction layer's turn output.
type SyncSnapshot struct {
	PaceDelta      float64 `json:"pace_delta"`
	PauseDeltaMs   int64   `json:"pause_delta_ms"`
	ResonanceBoost float64 `json:"res_boost"`
	DriftReduction float64 `json:"drift_reduction"`
}

// MetaSnapshot captures the self-observation layer.
type MetaSnapshot struct {
	SelfDrift     float64 `json:"self_drift"`
	SelfResonance float64 `json:"self_res"`
	Confidence    float64 `json:"confidence"`
	Clarity       float64 `json:"clarity"`
	Doubt         float64 `json:"doubt"`
	Observations  int     `json:"observations"`
}

// CompassionSnapshot captures the suffering detector.
type CompassionSnapshot struct {
	Suffering float64 `json:"suffering"`
	Type      string  `json:"type"`
	Kindness  float64 `json:"kindness"`
	Healing   float64 `json:"healing"`
	Level     float64 `json:"level"`
	Count     int     `json:"count"`
	Streak    int     `json:"streak"`
}

// SilenceSnapshot captures the pause classifier, current pause and
// session aggregates both.
type SilenceSnapshot struct {
	Type       string  `json:"type"`
	Quality    float64 `json:"quality"`
	Generative bool    `json:"generative"`
	Interrupt  bool    `json:"interrupt"`
	ElapsedMs  int64   `json:"elapsed_ms"`
	Count      int     `json:"count"`
	TotalMs    int64   `json:"total_ms"`
	MaxMs      int64   `json:"max_ms"`
	AvgQuality float64 `json:"avg_quality"`
}

// Snapshot is one turn's full record.
type Snapshot struct {
	Timestamp    string  `json:"ts"`
	Device       string  `json:"device"`
	Drift        float64 `json:"drift"`
	Resonance    float64 `json:"resonance"`
	WPM          float64 `json:"wpm"`
	PauseMs      int64   `json:"pause_ms"`
	Articulation float64 `json:"articulation"`
	Tone         string  `json:"tone"`
	ASRMs        int64   `json:"asr_ms"`
	TTSMs        int64   `json:"tts_ms"`
	TotalMs      int64   `json:"total_ms"`
	Index        int     `json:"idx"`
	Utterance    string  `json:"utt"`

	GuardAction string `json:"guard,omitempty"`

	Stabilizer *StabilizerSnapshot `json:"stabilizer,omitempty"`
	Sync       *SyncSnapshot       `json:"sync,omitempty"`
	Meta       *MetaSnapshot       `json:"meta,omitempty"`
	Compassion *CompassionSnapshot `json:"compassion,omitempty"`
	Silence    *SilenceSnapshot    `json:"silence,omitempty"`
}

// Logger appends snapshots to the session's JSONL file.
type Logger struct {
	id   string
	file *os.File
}

// Start opens a fresh session log under dir.
func Start(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	id := uuid.NewString()
	path := filepath.Join(dir, "session_"+id+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}
	return &Logger{id: id, file: f}, nil
}

// ID returns the session identifier.
func (l *Logger) ID() string {
	return l.id
}

// Path returns the backing file's path.
func (l *Logger) Path() string {
	return l.file.Name()
}

// Write appends one snapshot, stamping it if the caller did not.
func (l *Logger) Write(snap Snapshot) error {
	if snap.Timestamp == "" {
		snap.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	return l.file.Close()
}
