package telemetry

import (
	"testing"

	"github.com/fathom-sim/fathom/substrate"
)

func TestCollectorWindowBoundary(t *testing.T) {
	c := NewCollector(10.0, 0.1)

	if c.WindowDurationTicks() != 100 {
		t.Errorf("window ticks = %d, want 100", c.WindowDurationTicks())
	}
	if c.ShouldFlush(99) {
		t.Error("flush triggered before window end")
	}
	if !c.ShouldFlush(100) {
		t.Error("flush not triggered at window end")
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	c := NewCollector(0.01, 1.0)
	if c.WindowDurationTicks() != 1 {
		t.Errorf("window ticks = %d, want 1 minimum", c.WindowDurationTicks())
	}
}

func TestCollectorFlushAndReset(t *testing.T) {
	c := NewCollector(1.0, 0.1)

	c.RecordStamp(substrate.StampFire)
	c.RecordStamp(substrate.StampFire)
	c.RecordStamp(substrate.StampExplosion)
	c.RecordStamp(substrate.StampSonarPing)
	c.RecordSpawns(3)
	c.RecordDespawns(1)
	c.RecordDetonations(2)
	c.RecordKills(1)
	c.RecordDamage(75.5)

	stats := c.Flush(10, 5, []float64{40, 60, 80, 100})

	if stats.FireStamps != 2 || stats.ExplosionStamps != 1 || stats.SonarPings != 1 {
		t.Errorf("stamp counts = %d/%d/%d, want 2/1/1",
			stats.FireStamps, stats.ExplosionStamps, stats.SonarPings)
	}
	if stats.Spawns != 3 || stats.Despawns != 1 {
		t.Errorf("spawns/despawns = %d/%d, want 3/1", stats.Spawns, stats.Despawns)
	}
	if stats.Detonations != 2 || stats.Kills != 1 {
		t.Errorf("detonations/kills = %d/%d, want 2/1", stats.Detonations, stats.Kills)
	}
	if stats.DamageDealt != 75.5 {
		t.Errorf("damage = %f, want 75.5", stats.DamageDealt)
	}
	if stats.EntityCount != 5 {
		t.Errorf("entities = %d, want 5", stats.EntityCount)
	}
	if stats.SimTimeSec != 1.0 {
		t.Errorf("sim time = %f, want 1.0", stats.SimTimeSec)
	}
	if stats.HPMean != 70 {
		t.Errorf("hp mean = %f, want 70", stats.HPMean)
	}

	// Counters reset; window advances.
	next := c.Flush(20, 5, nil)
	if next.WindowStartTick != 10 {
		t.Errorf("window start = %d, want 10", next.WindowStartTick)
	}
	if next.FireStamps != 0 || next.Spawns != 0 || next.DamageDealt != 0 {
		t.Errorf("counters survived flush: %+v", next)
	}
}

func TestComputeHPStats(t *testing.T) {
	mean, p10, p50, p90 := ComputeHPStats(nil)
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty input should yield zeros")
	}

	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	mean, p10, p50, p90 = ComputeHPStats(values)
	if mean != 55 {
		t.Errorf("mean = %f, want 55", mean)
	}
	if !(p10 <= p50 && p50 <= p90) {
		t.Errorf("percentiles out of order: %f %f %f", p10, p50, p90)
	}
	if p10 > 30 || p90 < 80 {
		t.Errorf("percentiles implausible: p10=%f p90=%f", p10, p90)
	}

	// Input must not be reordered by the computation.
	if values[0] != 10 || values[9] != 100 {
		t.Error("input slice mutated")
	}
}
