// Package devmem keeps per-device rolling averages across sessions so a
// returning device starts from its learned profile instead of the
// factory one. The store is a small pipe-delimited line file.
package devmem

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Memory is the learned profile for one device.
type Memory struct {
	AvgPace         float64
	AvgPause        float64
	AvgArticulation float64
	AvgDrift        float64
	AvgResonance    float64
	Sessions        int
}

// Store holds learned profiles keyed by device label.
type Store struct {
	path string
	data map[string]Memory
}

// NewStore returns an empty, unbacked store.
func NewStore() *Store {
	return &Store{data: make(map[string]Memory)}
}

// Load reads the store file at path. A missing or partially malformed
// file yields whatever parsed cleanly.
func Load(path string) *Store {
	s := &Store{path: path, data: make(map[string]Memory)}

	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 7 {
			continue
		}
		pace, err1 := strconv.ParseFloat(parts[1], 64)
		pause, err2 := strconv.ParseFloat(parts[2], 64)
		art, err3 := strconv.ParseFloat(parts[3], 64)
		drift, err4 := strconv.ParseFloat(parts[4], 64)
		res, err5 := strconv.ParseFloat(parts[5], 64)
		sessions, err6 := strconv.Atoi(parts[6])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
			continue
		}
		s.data[parts[0]] = Memory{
			AvgPace:         pace,
			AvgPause:        pause,
			AvgArticulation: art,
			AvgDrift:        drift,
			AvgResonance:    res,
			Sessions:        sessions,
		}
	}
	return s
}

// Suggest returns the learned profile for a device, if any.
func (s *Store) Suggest(device string) (Memory, bool) {
	m, ok := s.data[device]
	return m, ok
}

// Update folds one session's final values into the device's averages.
func (s *Store) Update(device string, pace, pause, articulation, drift, resonance float64) {
	m := s.data[device]
	m.Sessions++
	n := float64(m.Sessions)
	m.AvgPace = (m.AvgPace*(n-1) + pace) / n
	m.AvgPause = (m.AvgPause*(n-1) + pause) / n
	m.AvgArticulation = (m.AvgArticulation*(n-1) + articulation) / n
	m.AvgDrift = (m.AvgDrift*(n-1) + drift) / n
	m.AvgResonance = (m.AvgResonance*(n-1) + resonance) / n
	s.data[device] = m
}

// Save writes the store back to its file. An unbacked store is a no-op.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create memory dir: %w", err)
		}
	}

	var b strings.Builder
	for key, m := range s.data {
		fmt.Fprintf(&b, "%s|%.3f|%.1f|%.3f|%.3f|%.3f|%d\n",
			key, m.AvgPace, m.AvgPause, m.AvgArticulation, m.AvgDrift, m.AvgResonance, m.Sessions)
	}

	if err := os.WriteFile(s.path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write memory store: %w", err)
	}
	return nil
}
