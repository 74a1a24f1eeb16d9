package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/fathom-sim/fathom/config"
	"github.com/fathom-sim/fathom/sim"
	"github.com/fathom-sim/fathom/substrate"
	"github.com/fathom-sim/fathom/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 10000, "Stop after N ticks")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", true, "Output window stats via slog")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	statsWindowSec := cfg.Telemetry.StatsWindow
	if *statsWindow > 0 {
		statsWindowSec = *statsWindow
	}

	outDir := *outputDir
	if outDir == "" {
		outDir = cfg.Telemetry.OutputDir
	}

	if err := run(rngSeed, *maxTicks, statsWindowSec, outDir, *logStats); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run drives a scripted scenario: a flotilla of ships and a platform under
// periodic fire, explosion and sonar events, with per-window telemetry.
func run(seed, maxTicks int64, statsWindowSec float64, outputDir string, logStats bool) error {
	cfg := config.Cfg()

	universe, err := substrate.NewSeeded(
		float32(cfg.World.Width),
		float32(cfg.World.Height),
		float32(cfg.World.Depth),
		float32(cfg.World.Resolution),
		seed,
	)
	if err != nil {
		return err
	}
	if err := universe.ApplyRateOverrides(cfg.Fields.Rates); err != nil {
		return err
	}

	simulation := sim.New(seed)
	dt := simulation.DT()

	collector := telemetry.NewCollector(statsWindowSec, cfg.Sim.DT)
	perf := telemetry.NewPerfCollector(int(collector.WindowDurationTicks()))

	output, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		return err
	}

	slog.Info("starting scenario",
		"seed", seed,
		"max_ticks", maxTicks,
		"stats_window", statsWindowSec,
		"output_dir", output.Dir(),
	)

	scenario := newScenario(universe, simulation, collector)
	scenario.deploy()

	for tick := int64(0); tick < maxTicks; tick++ {
		perf.StartTick()

		perf.StartPhase(telemetry.PhaseStamps)
		scenario.events(tick)

		perf.StartPhase(telemetry.PhaseSimStep)
		simulation.Step()

		perf.StartPhase(telemetry.PhaseSubstrateStep)
		universe.Step(float64(dt))

		perf.StartPhase(telemetry.PhaseObserve)
		scenario.observe()

		perf.StartPhase(telemetry.PhaseTelemetry)
		if collector.ShouldFlush(simulation.Tick()) {
			scenario.drain()
			stats := collector.Flush(simulation.Tick(), simulation.Count(), scenario.hpValues())
			if logStats {
				stats.LogStats()
			}
			if err := output.WriteTelemetry(stats); err != nil {
				return err
			}
			pstats := perf.Stats()
			pstats.LogStats()
			if err := output.WritePerf(pstats, simulation.Tick()); err != nil {
				return err
			}
		}

		perf.EndTick()
	}

	scenario.drain()
	stats := collector.Flush(simulation.Tick(), simulation.Count(), scenario.hpValues())
	if err := output.WriteTelemetry(stats); err != nil {
		return err
	}

	slog.Info("scenario complete",
		"ticks", simulation.Tick(),
		"entities", simulation.Count(),
		"substrate_hash", universe.StateHash(),
	)
	return nil
}
