package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/fathom-sim/fathom/components"
)

// Resolver mutates simulation state once per Step. The default chain is
// movement then combat; callers extend it with AddResolver.
type Resolver interface {
	Name() string
	Resolve(s *Simulation)
}

// MovementResolver integrates position by velocity over the fixed time
// step, clamping to the arena. Destroyed entities do not move.
type MovementResolver struct{}

func (MovementResolver) Name() string { return "movement" }

func (MovementResolver) Resolve(s *Simulation) {
	moved := false
	query := s.moveFilter.Query()
	for query.Next() {
		_, xf, phys := query.Get()
		if phys.VX == 0 && phys.VY == 0 {
			continue
		}

		e := query.Entity()
		if s.combatMap.HasAll(e) && s.combatMap.Get(e).Destroyed {
			continue
		}

		xf.X = clamp32(xf.X+phys.VX*s.dt, -s.width/2, s.width/2)
		xf.Y = clamp32(xf.Y+phys.VY*s.dt, -s.height/2, s.height/2)
		moved = true
	}
	if moved {
		s.gridDirty = true
	}
}

// CombatResolver detonates projectiles that come within proximity of a
// combat-bearing target. Damage falls off linearly with distance from the
// detonation point; entities at or below zero health are marked destroyed,
// and the projectile is despawned.
type CombatResolver struct {
	scratch []Neighbor
}

func (*CombatResolver) Name() string { return "combat" }

func (r *CombatResolver) Resolve(s *Simulation) {
	s.ensureGrid()

	type detonation struct {
		projectile ecs.Entity
		x, y       float32
	}
	var detonations []detonation

	query := s.moveFilter.Query()
	for query.Next() {
		meta, xf, _ := query.Get()
		if meta.Tag != components.TagProjectile {
			continue
		}

		e := query.Entity()
		r.scratch = s.grid.QueryRadiusInto(r.scratch[:0], xf.X, xf.Y, s.projectileRadius, e, s.xformMap)

		armed := false
		for _, n := range r.scratch {
			if !s.combatMap.HasAll(n.E) {
				continue
			}
			if s.combatMap.Get(n.E).Destroyed {
				continue
			}
			armed = true
			break
		}
		if armed {
			detonations = append(detonations, detonation{projectile: e, x: xf.X, y: xf.Y})
		}
	}

	// Structural changes happen outside the query loop.
	for _, d := range detonations {
		s.ensureGrid()
		r.scratch = s.grid.QueryRadiusInto(r.scratch[:0], d.x, d.y, s.projectileRadius, d.projectile, s.xformMap)
		for _, n := range r.scratch {
			if !s.combatMap.HasAll(n.E) {
				continue
			}
			combat := s.combatMap.Get(n.E)
			if combat.Destroyed {
				continue
			}

			dist := sqrt32(n.DistSq)
			dmg := s.projectileDamage * (1 - dist/s.projectileRadius)
			if dmg <= 0 {
				continue
			}

			combat.HP -= dmg
			s.counters.Damage += float64(dmg)
			if combat.HP <= 0 {
				combat.HP = 0
				combat.Destroyed = true
				s.counters.Kills++
			}
		}

		s.Despawn(d.projectile)
		s.counters.Detonations++
	}
}
