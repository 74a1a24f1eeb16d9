package main

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/fathom-sim/fathom/components"
	"github.com/fathom-sim/fathom/config"
	"github.com/fathom-sim/fathom/sim"
	"github.com/fathom-sim/fathom/substrate"
	"github.com/fathom-sim/fathom/telemetry"
)

// scenario owns the scripted actors and wires simulation events into the
// substrate and the telemetry collector.
type scenario struct {
	universe   *substrate.Universe
	simulation *sim.Simulation
	collector  *telemetry.Collector
	rng        *rand.Rand
	shells     []substrate.Shell

	ships    []shipActor
	platform ecs.Entity
}

type shipActor struct {
	handle  ecs.Entity
	patrolX float32
	patrolY float32
}

func newScenario(u *substrate.Universe, s *sim.Simulation, c *telemetry.Collector) *scenario {
	shells, err := substrate.ShellsFromConfig(config.Cfg())
	if err != nil {
		slog.Warn("invalid fovea config, using built-in shells", "error", err)
		shells = nil
	}
	return &scenario{
		universe:   u,
		simulation: s,
		collector:  c,
		rng:        rand.New(rand.NewSource(s.Seed())),
		shells:     shells,
	}
}

// deploy spawns the initial population: four ships on patrol stations
// around a central platform.
func (sc *scenario) deploy() {
	stations := []struct{ x, y float32 }{
		{-200, -200}, {200, -200}, {-200, 200}, {200, 200},
	}
	for _, st := range stations {
		heading := sc.rng.Float32() * 2 * math.Pi
		e, err := sc.simulation.Spawn(components.TagShip, st.x, st.y, heading)
		if err != nil {
			slog.Warn("ship deploy failed", "error", err)
			continue
		}
		sc.ships = append(sc.ships, shipActor{handle: e, patrolX: st.x, patrolY: st.y})
	}
	platform, err := sc.simulation.Spawn(components.TagPlatform, 0, 0, 0)
	if err != nil {
		slog.Warn("platform deploy failed", "error", err)
		return
	}
	sc.platform = platform
}

// events injects periodic stamps, steering orders and projectiles.
func (sc *scenario) events(tick int64) {
	// Steering orders every 2 seconds of sim time.
	if tick%20 == 0 {
		for _, ship := range sc.ships {
			snap, ok := sc.simulation.Get(ship.handle)
			if !ok || snap.Combat.Destroyed {
				continue
			}
			vx := (ship.patrolX-snap.Transform.X)*0.05 + sc.jitter(5)
			vy := (ship.patrolY-snap.Transform.Y)*0.05 + sc.jitter(5)
			if err := sc.simulation.ApplyAction(ship.handle, components.SetVelocity(vx, vy)); err != nil {
				slog.Warn("steering order dropped", "error", err)
			}
		}
	}

	// Sonar ping from the platform every 5 seconds.
	if tick%50 == 0 {
		sc.stamp(substrate.StampSonarPing, substrate.Vec3{Z: -50}, 150, 1)
	}

	// A fire flares near a random ship every 7.5 seconds.
	if tick%75 == 25 {
		ship := sc.ships[sc.rng.Intn(len(sc.ships))]
		if snap, ok := sc.simulation.Get(ship.handle); ok {
			center := substrate.Vec3{X: snap.Transform.X, Y: snap.Transform.Y, Z: -10}
			sc.stamp(substrate.StampFire, center, 12, 0.8)
		}
	}

	// Incoming projectile aimed at the platform every 10 seconds.
	if tick%100 == 60 {
		angle := sc.rng.Float32() * 2 * math.Pi
		x := 30 * float32(math.Cos(float64(angle)))
		y := 30 * float32(math.Sin(float64(angle)))
		proj, err := sc.simulation.Spawn(components.TagProjectile, x, y, angle)
		if err != nil {
			slog.Warn("projectile launch dropped", "error", err)
			return
		}
		if err := sc.simulation.ApplyAction(proj, components.SetVelocity(-x, -y)); err != nil {
			slog.Warn("projectile launch dropped", "error", err)
			return
		}
		sc.stamp(substrate.StampExplosion, substrate.Vec3{X: x, Y: y, Z: -5}, 8, 0.5)
	}
}

func (sc *scenario) stamp(kind substrate.StampKind, center substrate.Vec3, radius, intensity float32) {
	if err := sc.universe.ApplyStamp(kind, center, radius, intensity); err != nil {
		slog.Warn("stamp rejected", "kind", kind.String(), "error", err)
		return
	}
	sc.collector.RecordStamp(kind)
}

// observe exercises the observation paths the way a training loop would.
func (sc *scenario) observe() {
	maxContacts := config.Cfg().Sim.MaxContacts
	for _, ship := range sc.ships {
		snap, ok := sc.simulation.Get(ship.handle)
		if !ok {
			continue
		}
		if _, ok := sc.simulation.Observe(ship.handle, maxContacts); !ok {
			continue
		}
		pos := substrate.Vec3{X: snap.Transform.X, Y: snap.Transform.Y, Z: -20}
		if _, err := sc.universe.ObserveFoveated(pos, snap.Transform.Heading, sc.shells); err != nil {
			slog.Warn("foveated observation failed", "error", err)
		}
	}
}

// drain moves the simulation's event counters into the collector.
func (sc *scenario) drain() {
	c := sc.simulation.DrainCounters()
	sc.collector.RecordSpawns(int(c.Spawns))
	sc.collector.RecordDespawns(int(c.Despawns))
	sc.collector.RecordDetonations(int(c.Detonations))
	sc.collector.RecordKills(int(c.Kills))
	sc.collector.RecordDamage(c.Damage)
}

// hpValues samples current health across the scripted actors.
func (sc *scenario) hpValues() []float64 {
	var values []float64
	for _, ship := range sc.ships {
		if snap, ok := sc.simulation.Get(ship.handle); ok {
			values = append(values, float64(snap.Combat.HP))
		}
	}
	if snap, ok := sc.simulation.Get(sc.platform); ok {
		values = append(values, float64(snap.Combat.HP))
	}
	return values
}

func (sc *scenario) jitter(scale float32) float32 {
	return (sc.rng.Float32()*2 - 1) * scale
}
