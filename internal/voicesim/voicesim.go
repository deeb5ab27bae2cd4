// Package voicesim simulates the ASR and TTS edges of the loop: it
// produces deterministic latencies from the utterance and device
// profile so runs are reproducible, and optionally sleeps them out for
// real-time feel.
package voicesim

import (
	"time"

	"liminal/internal/device"
)

// Result is one simulated edge pass.
type Result struct {
	Text      string
	LatencyMs int64
}

// Metrics accumulates edge latencies over a session.
type Metrics struct {
	ASRTotalMs int64
	TTSTotalMs int64
	Turns      int
}

// Simulator drives both edges for one device.
type Simulator struct {
	Profile device.Profile
	FrameMs int64
	Sleep   bool

	metrics Metrics
}

// New builds a simulator for the device profile. frameMs <= 0 selects
// the 20ms default frame.
func New(profile device.Profile, frameMs int64, sleep bool) *Simulator {
	if frameMs <= 0 {
		frameMs = 20
	}
	return &Simulator{Profile: profile, FrameMs: frameMs, Sleep: sleep}
}

// Transcribe simulates speech-to-text for the utterance. Latency grows
// with utterance length, quantized to whole frames.
func (s *Simulator) Transcribe(text string) Result {
	frames := int64(len(text))/8 + 2
	latency := frames * s.FrameMs
	s.metrics.ASRTotalMs += latency
	s.metrics.Turns++
	s.wait(latency)
	return Result{Text: text, LatencyMs: latency}
}

// Synthesize simulates text-to-speech for the reply at the adjusted
// pace. Slower pace means longer playback; the device's pause padding
// is added on top.
func (s *Simulator) Synthesize(text string, paceFactor float64, pauseMs int64) Result {
	if paceFactor <= 0 {
		paceFactor = 1.0
	}
	base := float64(int64(len(text))*s.FrameMs) / paceFactor
	latency := int64(base) + pauseMs + s.Profile.PauseMs
	s.metrics.TTSTotalMs += latency
	s.wait(latency)
	return Result{Text: text, LatencyMs: latency}
}

// Metrics returns the accumulated session latencies.
func (s *Simulator) Metrics() Metrics {
	return s.metrics
}

func (s *Simulator) wait(ms int64) {
	if s.Sleep && ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
}
