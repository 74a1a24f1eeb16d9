// Package telemetry accumulates per-window event counters and writes
// experiment output as CSV.
package telemetry

import (
	"math"

	"github.com/fathom-sim/fathom/substrate"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	windowStartTick int64

	// Event counters for current window
	spawns      int
	despawns    int
	detonations int
	kills       int
	damage      float64

	fireStamps      int
	explosionStamps int
	sonarPings      int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int64(math.Round(windowDurationSec / dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordStamp records one applied stamp by kind.
func (c *Collector) RecordStamp(kind substrate.StampKind) {
	switch kind {
	case substrate.StampFire:
		c.fireStamps++
	case substrate.StampExplosion:
		c.explosionStamps++
	case substrate.StampSonarPing:
		c.sonarPings++
	}
}

// RecordSpawns adds spawn events.
func (c *Collector) RecordSpawns(n int) {
	c.spawns += n
}

// RecordDespawns adds despawn events.
func (c *Collector) RecordDespawns(n int) {
	c.despawns += n
}

// RecordDetonations adds projectile detonation events.
func (c *Collector) RecordDetonations(n int) {
	c.detonations += n
}

// RecordKills adds kill events.
func (c *Collector) RecordKills(n int) {
	c.kills += n
}

// RecordDamage adds dealt damage.
func (c *Collector) RecordDamage(d float64) {
	c.damage += d
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// entityCount is the live population at window end; hpValues holds current
// health of combat-bearing entities for percentile calculation.
func (c *Collector) Flush(currentTick int64, entityCount int, hpValues []float64) WindowStats {
	hpMean, hpP10, hpP50, hpP90 := ComputeHPStats(hpValues)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		EntityCount: entityCount,

		Spawns:      c.spawns,
		Despawns:    c.despawns,
		Detonations: c.detonations,
		Kills:       c.kills,

		FireStamps:      c.fireStamps,
		ExplosionStamps: c.explosionStamps,
		SonarPings:      c.sonarPings,

		DamageDealt: c.damage,

		HPMean: hpMean,
		HPP10:  hpP10,
		HPP50:  hpP50,
		HPP90:  hpP90,
	}

	c.windowStartTick = currentTick
	c.spawns = 0
	c.despawns = 0
	c.detonations = 0
	c.kills = 0
	c.damage = 0
	c.fireStamps = 0
	c.explosionStamps = 0
	c.sonarPings = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
