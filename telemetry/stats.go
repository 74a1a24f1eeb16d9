package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	EntityCount int `csv:"entities"`

	// Events during window
	Spawns      int `csv:"spawns"`
	Despawns    int `csv:"despawns"`
	Detonations int `csv:"detonations"`
	Kills       int `csv:"kills"`

	FireStamps      int `csv:"fire_stamps"`
	ExplosionStamps int `csv:"explosion_stamps"`
	SonarPings      int `csv:"sonar_pings"`

	DamageDealt float64 `csv:"damage_dealt"`

	// Health distribution (sampled at window end)
	HPMean float64 `csv:"hp_mean"`
	HPP10  float64 `csv:"hp_p10"`
	HPP50  float64 `csv:"hp_p50"`
	HPP90  float64 `csv:"hp_p90"`
}

// ComputeHPStats calculates mean and percentiles from health values.
func ComputeHPStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return mean, p10, p50, p90
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"entities", s.EntityCount,
		"spawns", s.Spawns,
		"despawns", s.Despawns,
		"detonations", s.Detonations,
		"kills", s.Kills,
		"fire_stamps", s.FireStamps,
		"explosion_stamps", s.ExplosionStamps,
		"sonar_pings", s.SonarPings,
		"damage_dealt", s.DamageDealt,
		"hp_mean", s.HPMean,
		"hp_p10", s.HPP10,
		"hp_p50", s.HPP50,
		"hp_p90", s.HPP90,
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("entities", s.EntityCount),
		slog.Int("spawns", s.Spawns),
		slog.Int("despawns", s.Despawns),
		slog.Int("detonations", s.Detonations),
		slog.Int("kills", s.Kills),
		slog.Int("fire_stamps", s.FireStamps),
		slog.Int("explosion_stamps", s.ExplosionStamps),
		slog.Int("sonar_pings", s.SonarPings),
		slog.Float64("damage_dealt", s.DamageDealt),
		slog.Float64("hp_mean", s.HPMean),
		slog.Float64("hp_p10", s.HPP10),
		slog.Float64("hp_p50", s.HPP50),
		slog.Float64("hp_p90", s.HPP90),
	)
}
