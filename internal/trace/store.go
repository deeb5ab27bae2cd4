// Package trace is the cross-session theme trace store: per-theme
// drift/resonance biases with a stability score and visit count,
// consolidated a little each session and recalled to warm the next one.
// Traces live in a single-table SQLite database.
package trace

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Advice is the recalled bias set for one theme.
type Advice struct {
	DriftBias     float64
	ResonanceBias float64
	Stability     float64
	Visits        int
}

// biases never exceed this magnitude, however many sessions fold in.
const maxBias = 0.2

// Store is a SQLite-backed theme trace store.
type Store struct {
	db *sql.DB
}

// Open creates or opens the trace database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS traces (
	theme      TEXT PRIMARY KEY,
	drift_bias REAL NOT NULL DEFAULT 0,
	res_bias   REAL NOT NULL DEFAULT 0,
	stability  REAL NOT NULL DEFAULT 0,
	visits     INTEGER NOT NULL DEFAULT 0
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create traces table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Recall returns the stored advice for a theme, if any.
func (s *Store) Recall(theme string) (Advice, bool, error) {
	row := s.db.QueryRow(
		"SELECT drift_bias, res_bias, stability, visits FROM traces WHERE theme = ?", theme)

	var a Advice
	if err := row.Scan(&a.DriftBias, &a.ResonanceBias, &a.Stability, &a.Visits); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Advice{}, false, nil
		}
		return Advice{}, false, fmt.Errorf("failed to recall trace: %w", err)
	}
	a.Stability = clamp01(a.Stability)
	return a, true, nil
}

// Consolidate folds one observation into a theme's trace: biases
// accumulate (bounded), the stability score keeps a running average of
// how small the deltas were, and the visit count grows. Zero deltas are
// a no-op.
func (s *Store) Consolidate(theme string, driftDelta, resDelta float64) error {
	if driftDelta == 0 && resDelta == 0 {
		return nil
	}

	prev, found, err := s.Recall(theme)
	if err != nil {
		return err
	}

	next := prev
	next.Visits++
	next.DriftBias = clampBias(prev.DriftBias + driftDelta)
	next.ResonanceBias = clampBias(prev.ResonanceBias + resDelta)

	score := clamp01(1.0 - (abs(driftDelta)+abs(resDelta))*0.5)
	if !found || next.Visits <= 1 {
		next.Stability = score
	} else {
		n := float64(next.Visits)
		next.Stability = clamp01((prev.Stability*(n-1) + score) / n)
	}

	const upsert = `
INSERT INTO traces (theme, drift_bias, res_bias, stability, visits)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(theme) DO UPDATE SET
	drift_bias = excluded.drift_bias,
	res_bias   = excluded.res_bias,
	stability  = excluded.stability,
	visits     = excluded.visits`
	if _, err := s.db.Exec(upsert, theme, next.DriftBias, next.ResonanceBias, next.Stability, next.Visits); err != nil {
		return fmt.Errorf("failed to consolidate trace: %w", err)
	}
	return nil
}

// FoldSyncDelta applies the session's slow-layer increments to a theme.
func (s *Store) FoldSyncDelta(theme string, driftBias, resBias float64) error {
	return s.Consolidate(theme, driftBias, resBias)
}

// SeedBias weights recalled advice by how settled the theme is: a
// stable, well-visited theme contributes more of its bias.
func SeedBias(a Advice) (resSeed, driftSeed float64) {
	visits := float64(a.Visits)
	if visits > 12 {
		visits = 12
	}
	weight := 0.4 + 0.6*((clamp01(a.Stability)+visits/12)*0.5)
	resSeed = clamp(a.ResonanceBias*weight, -0.05, 0.05)
	driftSeed = clamp(-a.DriftBias*weight, 0, 0.05)
	return resSeed, driftSeed
}

// NormalizeTheme derives the session theme key: the script if present,
// else the first utterance, else "default".
func NormalizeTheme(script string, utterances []string) string {
	if t := strings.ToLower(strings.TrimSpace(script)); t != "" {
		return t
	}
	if len(utterances) > 0 {
		if t := strings.ToLower(strings.TrimSpace(utterances[0])); t != "" {
			return t
		}
	}
	return "default"
}

func clampBias(v float64) float64 {
	return clamp(v, -maxBias, maxBias)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
