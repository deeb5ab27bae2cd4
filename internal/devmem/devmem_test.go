package devmem

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "absent.txt"))
	if _, ok := s.Suggest("phone"); ok {
		t.Error("expected no suggestions from an empty store")
	}
}

func TestUpdateSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device_memory.txt")

	s := Load(path)
	s.Update("phone", 1.05, 60, 0.42, 0.31, 0.72)
	s.Update("phone", 0.95, 80, 0.48, 0.35, 0.68)
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load(path)
	m, ok := loaded.Suggest("phone")
	if !ok {
		t.Fatal("expected a learned profile for phone")
	}
	if m.Sessions != 2 {
		t.Errorf("sessions = %d, want 2", m.Sessions)
	}
	// Averages survive the %.3f / %.1f formatting.
	if math.Abs(m.AvgPace-1.0) > 0.001 {
		t.Errorf("avg pace = %f, want ~1.0", m.AvgPace)
	}
	if math.Abs(m.AvgPause-70) > 0.1 {
		t.Errorf("avg pause = %f, want ~70", m.AvgPause)
	}
}

func TestRollingAverage(t *testing.T) {
	s := NewStore()
	s.Update("headset", 1.0, 40, 0.5, 0.3, 0.7)
	s.Update("headset", 1.2, 60, 0.5, 0.3, 0.7)
	s.Update("headset", 1.1, 50, 0.5, 0.3, 0.7)

	m, _ := s.Suggest("headset")
	if math.Abs(m.AvgPace-1.1) > 1e-9 {
		t.Errorf("avg pace = %f, want 1.1", m.AvgPace)
	}
	if math.Abs(m.AvgPause-50) > 1e-9 {
		t.Errorf("avg pause = %f, want 50", m.AvgPause)
	}
}

func TestMalformedLinesSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device_memory.txt")
	data := "garbage line\n" +
		"phone|1.050|60.0|0.420|0.310|0.720|3\n" +
		"headset|not|enough|numbers|here|x|y\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := Load(path)
	if _, ok := s.Suggest("headset"); ok {
		t.Error("malformed line must be skipped")
	}
	m, ok := s.Suggest("phone")
	if !ok || m.Sessions != 3 {
		t.Errorf("expected the clean line to load, got %+v ok=%t", m, ok)
	}
}

func TestSaveUnbackedStoreIsNoOp(t *testing.T) {
	s := NewStore()
	s.Update("phone", 1.0, 40, 0.5, 0.3, 0.7)
	if err := s.Save(); err != nil {
		t.Errorf("Save on an unbacked store must not fail: %v", err)
	}
}
