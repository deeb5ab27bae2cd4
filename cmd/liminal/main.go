package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"liminal/internal/compassion"
	"liminal/internal/config"
	"liminal/internal/device"
	"liminal/internal/devmem"
	"liminal/internal/dialog"
	"liminal/internal/emotive"
	"liminal/internal/guard"
	"liminal/internal/health"
	"liminal/internal/metacog"
	"liminal/internal/neuralsync"
	"liminal/internal/pipeline"
	"liminal/internal/session"
	"liminal/internal/signal"
	"liminal/internal/silence"
	"liminal/internal/stabilizer"
	"liminal/internal/trace"
	"liminal/internal/viz"
	"liminal/internal/voicesim"
)

var (
	// Global flags
	cfgPath    string
	mode       string
	cycles     int
	script     string
	inputsPath string
	vizMode    string
	logEnabled bool
	logDir     string
	strict     bool
	verbose    bool
	sleep      bool

	baselineDrift float64
	baselineRes   float64
	// Layer toggles
	disabledLayers []string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "liminal",
	Short: "liminal - self-regulating voice conversation loop",
	Long: `liminal runs a simulated voice conversation through a self-regulation
pipeline: a hysteresis stabilizer, a residual sync layer, meta-cognitive
self-observation, a compassion detector, and a silence classifier.

Each turn is transcribed, measured, corrected, guarded, and synthesized;
session state persists across runs through the emotive seed, the
per-device memory, and the theme trace store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runSession,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgPath, "config", "", "path to YAML config file")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rf := rootCmd.Flags()
	rf.StringVar(&mode, "mode", "", "device mode: phone, headset, terminal")
	rf.IntVar(&cycles, "cycles", 0, "number of conversation turns")
	rf.StringVar(&script, "script", "", "';'-separated utterances")
	rf.StringVar(&inputsPath, "inputs", "", "path to a file of utterances, one per line")
	rf.StringVar(&vizMode, "viz", "", "visualization mode: compact, full")
	rf.BoolVar(&logEnabled, "log", false, "write per-turn session snapshots")
	rf.StringVar(&logDir, "log-dir", "", "directory for session snapshots")
	rf.BoolVar(&strict, "strict", false, "exit non-zero when health limits are breached")
	rf.BoolVar(&sleep, "sleep", false, "sleep out simulated edge latencies")
	rf.Float64Var(&baselineDrift, "baseline-drift", 0, "shared drift baseline")
	rf.Float64Var(&baselineRes, "baseline-res", 0, "shared resonance baseline")
	rf.StringSliceVar(&disabledLayers, "disable", nil,
		"layers to disable (stabilizer, sync, awareness, compassion, silence, guard)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig layers CLI flags over the resolved file and environment
// configuration.
func resolveConfig(cmd *cobra.Command) config.Config {
	cfg := config.Resolve(cfgPath)

	if cmd.Flags().Changed("mode") {
		cfg.Mode = mode
	}
	if cmd.Flags().Changed("cycles") {
		cfg.Cycles = cycles
	}
	if cmd.Flags().Changed("script") {
		cfg.Script = script
	}
	if cmd.Flags().Changed("inputs") {
		cfg.InputsPath = inputsPath
	}
	if cmd.Flags().Changed("viz") {
		cfg.VizMode = vizMode
	}
	if cmd.Flags().Changed("log") {
		cfg.Logging = logEnabled
	}
	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir = logDir
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = strict
	}
	if cmd.Flags().Changed("baseline-drift") {
		cfg.BaselineDrift = baselineDrift
	}
	if cmd.Flags().Changed("baseline-res") {
		cfg.BaselineResonance = baselineRes
	}
	for _, layer := range disabledLayers {
		switch strings.ToLower(strings.TrimSpace(layer)) {
		case "stabilizer":
			cfg.Stabilizer.Enabled = false
		case "sync":
			cfg.Sync.Enabled = false
		case "awareness":
			cfg.Awareness.Enabled = false
		case "compassion":
			cfg.Compassion.Enabled = false
		case "silence":
			cfg.Silence.Enabled = false
		case "guard":
			cfg.Guard.Enabled = false
		}
	}
	cfg.Sanitize()
	return cfg
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg := resolveConfig(cmd)

	mode := device.Detect(cfg.Mode)
	profile := device.ProfileFor(mode)

	utterances, err := dialog.LoadInputs(cfg.InputsPath, cfg.Script, cfg.Cycles)
	if err != nil {
		return err
	}
	theme := trace.NormalizeTheme(cfg.Script, utterances)

	logger.Info("session starting",
		zap.String("device", mode.String()),
		zap.Int("cycles", len(utterances)),
		zap.String("theme", theme),
	)

	// Persistent collaborators.
	var memStore *devmem.Store
	if cfg.Memory.Enabled {
		memStore = devmem.Load(cfg.Memory.Path)
	}

	var traceStore *trace.Store
	if cfg.Trace.Enabled {
		traceStore, err = trace.Open(cfg.Trace.Path)
		if err != nil {
			logger.Warn("trace store unavailable", zap.Error(err))
		} else {
			defer traceStore.Close()
		}
	}

	// Session seeds from whatever persisted state exists.
	var emoteRes, emoteDrift float64
	if cfg.Emotive.Enabled {
		if seed, ok := emotive.LoadLatest(cfg.Emotive.Path); ok {
			decayed := emotive.Decay(seed, time.Now().Unix(), cfg.Emotive.HalfLifeMin)
			decayed.EMAResonance = emotive.ApplyBootBias(decayed.EMAResonance, cfg.Emotive.WarmBias)
			emoteRes = signal.Clamp((decayed.EMAResonance-cfg.BaselineResonance)*0.5, -0.05, 0.05)
			emoteDrift = signal.Clamp((decayed.EMADrift-cfg.BaselineDrift)*0.5, 0, 0.05)
		}
	}

	var devPace float64
	var devPause int64
	if memStore != nil {
		if mem, ok := memStore.Suggest(mode.String()); ok && mem.Sessions > 0 {
			devPace = signal.Clamp(mem.AvgPace-profile.PaceFactor, -0.05, 0.05)
			devPause = clampMs(int64(mem.AvgPause)-profile.PauseMs, -20, 20)
		}
	}

	var traceRes, traceDrift float64
	if traceStore != nil {
		if adv, found, err := traceStore.Recall(theme); err == nil && found {
			traceRes, traceDrift = trace.SeedBias(adv)
		}
	}

	// Per-turn layers.
	stab := stabilizer.New(stabilizer.Config{
		Alpha:        cfg.Stabilizer.Alpha,
		WarmDrift:    cfg.Stabilizer.WarmDrift,
		HotDrift:     cfg.Stabilizer.HotDrift,
		LowResonance: cfg.Stabilizer.LowResonance,
		CoolSteps:    cfg.Stabilizer.CoolSteps,
		CalmBoost:    cfg.Stabilizer.CalmBoost,
	})
	sync := neuralsync.New(
		neuralsync.Config{LRFast: cfg.Sync.LRFast, LRSlow: cfg.Sync.LRSlow, MaxStep: cfg.Sync.MaxStep},
		neuralsync.Baselines{Drift: cfg.BaselineDrift, Resonance: cfg.BaselineResonance},
	)
	seeds := neuralsync.MergeSeeds(emoteRes, emoteDrift, devPace, devPause, traceRes, traceDrift)
	sync.WarmStart(seeds)

	meta := metacog.New()
	smoother := metacog.NewSmoother(cfg.Awareness.SmootherAlpha)
	care := compassion.New()
	pauses := silence.NewTracker(time.Duration(cfg.Silence.MinDurationMs) * time.Millisecond)

	var stages []pipeline.Stage
	if cfg.Stabilizer.Enabled {
		stages = append(stages, &pipeline.StabilizerStage{S: stab})
	}
	if cfg.Sync.Enabled {
		stages = append(stages, &pipeline.SyncStage{S: sync})
	}
	if cfg.Awareness.Enabled {
		stages = append(stages, &pipeline.MetaStage{M: meta, Sm: smoother})
	}
	if cfg.Compassion.Enabled {
		stages = append(stages, &pipeline.CompassionStage{D: care})
	}
	if cfg.Silence.Enabled {
		stages = append(stages, &pipeline.SilenceStage{T: pauses})
	}
	pipe := pipeline.New(logger, stages...)
	logger.Info("pipeline assembled", zap.Strings("stages", pipe.StageNames()))

	soft := guard.New(cfg.Guard.DriftLimit, cfg.Guard.ResonanceLimit, cfg.Guard.RephraseFactor)
	stats := health.New(cfg.Guard.DriftLimit, cfg.Guard.ResonanceLimit)
	sim := voicesim.New(profile, 0, sleep)

	var sessLog *session.Logger
	if cfg.Logging {
		sessLog, err = session.Start(cfg.LogDir)
		if err != nil {
			return err
		}
		defer sessLog.Close()
		logger.Info("session log opened", zap.String("path", sessLog.Path()))
	}

	// Running voice parameters, seeded by persistent state.
	pace := signal.Clamp(profile.PaceFactor+seeds.PaceBias, 0.7, 1.3)
	pause := clampMs(profile.PauseMs+seeds.PauseBiasMs, 20, 250)

	var driftSeries, resSeries []float64
	var rows []viz.TableRow
	var lastProsody signal.Prosody
	prevRephrased := false
	prevTheme := ""

	for i, utt := range utterances {
		asr := sim.Transcribe(utt)
		prosody := signal.AnalyzeProsody(utt, pace, pause)
		lastProsody = prosody

		measuredDrift, measuredRes := signal.Analyze(utt)
		measuredDrift, measuredRes = signal.ApplyToneBias(measuredDrift, measuredRes, prosody.Tone)

		adjDrift := measuredDrift
		adjRes := measuredRes
		if i == 0 {
			adjRes = signal.Clamp01(adjRes + seeds.ResonanceWarm)
			adjDrift = signal.Clamp01(adjDrift - seeds.DriftSoft)
		}

		key := signal.NormalizeText(utt)
		repeated := key != "" && key == prevTheme
		prevTheme = key

		t := pipeline.Turn{
			Input: utt,
			Signal: signal.Signal{
				Drift:     measuredDrift,
				Resonance: measuredRes,
				Tone:      prosody.Tone,
				WPM:       prosody.WPM,
				PauseMs:   pause,
			},
			MeasuredDrift:     measuredDrift,
			MeasuredResonance: measuredRes,
			Drift:             adjDrift,
			Resonance:         adjRes,
			RepeatedTheme:     repeated,
			Rephrased:         prevRephrased,
			NewUserInput:      true,
			SilenceGap:        gapBefore(measuredDrift),
		}
		pipe.Process(&t)

		pace = signal.Clamp(pace+t.Adjust.Pace, 0.7, 1.3)
		pause = clampMs(pause+t.Adjust.PauseMs, 20, 250)

		reply := "I hear you: " + utt
		action := guard.ActionNone
		if cfg.Guard.Enabled {
			action = soft.Check(t.MeasuredDrift, t.MeasuredResonance)
		}
		if action == guard.ActionRephrase {
			reply = soft.Rephrase(reply)
		}
		prevRephrased = action == guard.ActionRephrase

		tts := sim.Synthesize(reply, pace, t.Adjust.PauseMs)
		stats.Update(t.MeasuredDrift, t.MeasuredResonance)

		if traceStore != nil {
			// The applied correction is the trace this theme leaves behind.
			err := traceStore.Consolidate(theme,
				t.Drift-t.MeasuredDrift, t.Resonance-t.MeasuredResonance)
			if err != nil {
				logger.Warn("trace consolidation failed", zap.Error(err))
			}
		}

		driftSeries = append(driftSeries, t.Drift)
		resSeries = append(resSeries, t.Resonance)
		rows = append(rows, viz.TableRow{
			Index:     i + 1,
			Utterance: utt,
			Drift:     t.Drift,
			Resonance: t.Resonance,
			State:     t.StabilizerState.String(),
			Guard:     action.String(),
		})

		if cfg.VizMode == "compact" {
			fmt.Println(viz.CompactTurn(i+1, t.Drift, t.Resonance, t.StabilizerState.String()))
			fmt.Println(viz.CompactStabilizer(t.StabilizerState.String(), stab.EMADrift(), stab.EMAResonance()))
		}
		if cfg.Awareness.Enabled && cfg.Awareness.Viz {
			fmt.Println("[meta] " + meta.SelfAssess())
		}
		if cfg.Compassion.Enabled && cfg.Compassion.Viz {
			fmt.Println("[compassion] " + care.Status())
		}

		if sessLog != nil {
			snap := session.Snapshot{
				Device:       mode.String(),
				Drift:        t.Drift,
				Resonance:    t.Resonance,
				WPM:          prosody.WPM,
				PauseMs:      t.Signal.PauseMs,
				Articulation: signal.ApplyArticulationHint(prosody.Articulation, t.Advice.ArticulationHint),
				Tone:         prosody.Tone.String(),
				ASRMs:        asr.LatencyMs,
				TTSMs:        tts.LatencyMs,
				TotalMs:      asr.LatencyMs + tts.LatencyMs,
				Index:        i + 1,
				Utterance:    utt,
				GuardAction:  action.String(),
			}
			if cfg.Stabilizer.Enabled {
				snap.Stabilizer = &session.StabilizerSnapshot{
					State:        t.StabilizerState.String(),
					EMADrift:     stab.EMADrift(),
					EMAResonance: stab.EMAResonance(),
				}
			}
			if cfg.Sync.Enabled {
				snap.Sync = &session.SyncSnapshot{
					PaceDelta:      t.Correction.PaceDelta,
					PauseDeltaMs:   t.Correction.PauseDeltaMs,
					ResonanceBoost: t.Correction.ResonanceBoost,
					DriftReduction: t.Correction.DriftReduction,
				}
			}
			if cfg.Awareness.Enabled {
				snap.Meta = &session.MetaSnapshot{
					SelfDrift:     meta.SelfDrift,
					SelfResonance: meta.SelfResonance,
					Confidence:    meta.Confidence,
					Clarity:       meta.Clarity,
					Doubt:         meta.Doubt,
					Observations:  meta.ObservationCount,
				}
			}
			if cfg.Compassion.Enabled {
				snap.Compassion = &session.CompassionSnapshot{
					Suffering: care.UserSuffering,
					Type:      care.Type.String(),
					Kindness:  care.ResponseKindness,
					Healing:   care.HealingIntent,
					Level:     care.Level,
					Count:     care.SufferingCount,
					Streak:    care.SufferingStreak,
				}
			}
			if cfg.Silence.Enabled {
				snap.Silence = &session.SilenceSnapshot{
					Type:       pauses.Type.String(),
					Quality:    pauses.Quality,
					Generative: pauses.IsGenerative,
					Interrupt:  pauses.ShouldInterrupt,
					ElapsedMs:  pauses.Current.Milliseconds(),
					Count:      pauses.Count,
					TotalMs:    pauses.TotalTime.Milliseconds(),
					MaxMs:      pauses.MaxDuration.Milliseconds(),
					AvgQuality: pauses.AvgQuality,
				}
			}
			if err := sessLog.Write(snap); err != nil {
				logger.Warn("snapshot write failed", zap.Error(err))
			}
		}
	}

	// End-of-run surfaces.
	if cfg.VizMode == "full" {
		fmt.Println(viz.FullTable(rows))
		if cfg.Awareness.Enabled {
			fmt.Println("[meta] " + meta.SelfAssess())
		}
		if cfg.Compassion.Enabled {
			fmt.Println("[compassion] " + care.Status())
		}
		if cfg.Silence.Enabled {
			fmt.Println(pauses.Status())
		}
	}
	fmt.Println(viz.SessionSummary(driftSeries, resSeries))

	if cfg.Metrics {
		m := sim.Metrics()
		fmt.Printf("[metrics] turns=%d asr_total=%dms tts_total=%dms\n",
			m.Turns, m.ASRTotalMs, m.TTSTotalMs)
		if cfg.Silence.Enabled {
			fmt.Printf("[metrics] silences=%d total=%.1fs max=%.1fs avg_quality=%.2f\n",
				pauses.Count, pauses.TotalTime.Seconds(), pauses.MaxDuration.Seconds(), pauses.AvgQuality)
		}
		if cfg.Compassion.Enabled {
			fmt.Printf("[metrics] suffering_episodes=%d\n", care.SufferingCount)
		}
		if cfg.Awareness.Enabled {
			sd, conf := smoother.Metrics()
			fmt.Printf("[metrics] self_drift=%.2f confidence=%.2f more_awareness=%t\n",
				sd, conf, smoother.NeedsMoreAwareness())
		}
	}

	// Fold the session back into the persistent collaborators.
	if traceStore != nil && cfg.Sync.Enabled {
		driftBias, resBias := sync.SlowIncrements()
		if err := traceStore.FoldSyncDelta(theme, driftBias, resBias); err != nil {
			logger.Warn("trace consolidation failed", zap.Error(err))
		}
	}
	if cfg.Emotive.Enabled {
		seed := emotive.Seed{
			EMADrift:     stab.EMADrift(),
			EMAResonance: stab.EMAResonance(),
			Tone:         lastProsody.Tone.String(),
			WPM:          lastProsody.WPM,
			UnixSecs:     time.Now().Unix(),
		}
		if err := emotive.Append(cfg.Emotive.Path, seed); err != nil {
			logger.Warn("emotive seed write failed", zap.Error(err))
		}
	}
	if memStore != nil {
		memStore.Update(mode.String(), pace, float64(pause),
			lastProsody.Articulation, stab.EMADrift(), stab.EMAResonance())
		if err := memStore.Save(); err != nil {
			logger.Warn("device memory write failed", zap.Error(err))
		}
	}

	if cfg.Alarm {
		for _, line := range stats.SummaryLines() {
			fmt.Println(line)
		}
	}
	if cfg.Strict && stats.Breached() {
		logger.Warn("strict mode: health limits breached")
		os.Exit(2)
	}
	return nil
}

// gapBefore simulates the pre-utterance pause deterministically from the
// measured drift so scripted runs reproduce.
func gapBefore(drift float64) time.Duration {
	return time.Duration(drift*6000) * time.Millisecond
}

func clampMs(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
