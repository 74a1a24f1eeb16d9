// Package sim runs the entity-based combat simulation: a small population
// of tagged entities with transform/physics/combat state, advanced in fixed
// time increments and observed through fixed-shape per-agent snapshots.
package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/fathom-sim/fathom/components"
	"github.com/fathom-sim/fathom/config"
)

// ErrNoEntity is returned when an operation addresses an entity that was
// never spawned or has been despawned.
var ErrNoEntity = errors.New("sim: no such entity")

// ErrNotFinite is returned when an input carries a NaN or infinite value.
// Such values are configuration errors and are never written into state.
var ErrNotFinite = errors.New("sim: non-finite value")

// Entity is a point-in-time snapshot of one simulated unit. Tags without
// physics or combat report zero values for those components.
type Entity struct {
	Handle    ecs.Entity
	Tag       components.Tag
	Transform components.Transform
	Physics   components.Physics
	Combat    components.Combat
}

// Counters accumulates per-window event counts for telemetry.
type Counters struct {
	Spawns      int64
	Despawns    int64
	Detonations int64
	Kills       int64
	Damage      float64
}

// Simulation owns the entity store, the tick counter and the seeded RNG.
// One Simulation is driven by a strict sequence of calls from one caller;
// it holds no locks and shares no state with other instances.
type Simulation struct {
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	entityMapper *ecs.Map2[components.Meta, components.Transform]

	metaMap   *ecs.Map1[components.Meta]
	xformMap  *ecs.Map1[components.Transform]
	physMap   *ecs.Map1[components.Physics]
	combatMap *ecs.Map1[components.Combat]

	allFilter  *ecs.Filter2[components.Meta, components.Transform]
	moveFilter *ecs.Filter3[components.Meta, components.Transform, components.Physics]

	grid       *Grid
	gridDirty  bool
	obsScratch []Neighbor

	resolvers []Resolver

	dt               float32
	width            float32
	height           float32
	sensorRange      float32
	projectileRadius float32
	projectileDamage float32

	tick     int64
	counters Counters
}

// New creates a simulation with the default resolver chain, drawing arena
// extent, time step and combat parameters from the loaded configuration.
func New(seed int64) *Simulation {
	cfg := config.Cfg()

	s := &Simulation{
		seed:             seed,
		dt:               float32(cfg.Sim.DT),
		width:            float32(cfg.Sim.WorldWidth),
		height:           float32(cfg.Sim.WorldHeight),
		sensorRange:      float32(cfg.Sim.SensorRange),
		projectileRadius: float32(cfg.Sim.ProjectileRadius),
		projectileDamage: float32(cfg.Sim.ProjectileDamage),
	}
	world := ecs.NewWorld()

	s.world = world
	s.rng = rand.New(rand.NewSource(seed))

	s.entityMapper = ecs.NewMap2[components.Meta, components.Transform](world)
	s.metaMap = ecs.NewMap1[components.Meta](world)
	s.xformMap = ecs.NewMap1[components.Transform](world)
	s.physMap = ecs.NewMap1[components.Physics](world)
	s.combatMap = ecs.NewMap1[components.Combat](world)

	s.allFilter = ecs.NewFilter2[components.Meta, components.Transform](world)
	s.moveFilter = ecs.NewFilter3[components.Meta, components.Transform, components.Physics](world)

	s.grid = NewGrid(s.width, s.height, float32(cfg.Sim.GridCellSize))
	s.gridDirty = true

	s.resolvers = []Resolver{
		&MovementResolver{},
		&CombatResolver{},
	}
	return s
}

// AddResolver appends a resolver to the per-tick chain.
func (s *Simulation) AddResolver(r Resolver) {
	s.resolvers = append(s.resolvers, r)
}

// Spawn creates an entity with the given transform. Tags that carry physics
// start with zero velocity; tags that carry combat start at full health.
// Non-finite coordinates or heading are rejected.
func (s *Simulation) Spawn(tag components.Tag, x, y, heading float32) (ecs.Entity, error) {
	if !finite32(x) || !finite32(y) || !finite32(heading) {
		return ecs.Entity{}, fmt.Errorf("%w: spawn %s at (%g, %g) heading %g", ErrNotFinite, tag, x, y, heading)
	}

	meta := components.Meta{Tag: tag}
	xf := components.Transform{
		X:       clamp32(x, -s.width/2, s.width/2),
		Y:       clamp32(y, -s.height/2, s.height/2),
		Heading: normalizeAngle(heading),
	}
	e := s.entityMapper.NewEntity(&meta, &xf)

	if tag.HasPhysics() {
		phys := components.Physics{}
		s.physMap.Add(e, &phys)
	}
	if tag.HasCombat() {
		combat := components.NewCombat(tag)
		s.combatMap.Add(e, &combat)
	}

	s.counters.Spawns++
	s.gridDirty = true
	return e, nil
}

// Despawn removes an entity. Removing an already-gone entity is a no-op;
// stale handles never resolve to a later entity.
func (s *Simulation) Despawn(e ecs.Entity) {
	if !s.exists(e) {
		return
	}
	s.world.RemoveEntity(e)
	s.counters.Despawns++
	s.gridDirty = true
}

// Get returns a snapshot of the entity's components, or false if the id was
// never spawned or has been despawned.
func (s *Simulation) Get(e ecs.Entity) (Entity, bool) {
	if !s.exists(e) {
		return Entity{}, false
	}
	snap := Entity{
		Handle:    e,
		Tag:       s.metaMap.Get(e).Tag,
		Transform: *s.xformMap.Get(e),
	}
	if s.physMap.HasAll(e) {
		snap.Physics = *s.physMap.Get(e)
	}
	if s.combatMap.HasAll(e) {
		snap.Combat = *s.combatMap.Get(e)
	}
	return snap, true
}

// ApplyAction writes the action's velocity and heading overrides into the
// entity's components. Motion happens on the next Step, not immediately.
// Non-finite overrides are rejected before any component is touched.
func (s *Simulation) ApplyAction(e ecs.Entity, a components.Action) error {
	if !s.exists(e) {
		return ErrNoEntity
	}
	if (a.VX != nil && !finite32(*a.VX)) ||
		(a.VY != nil && !finite32(*a.VY)) ||
		(a.Heading != nil && !finite32(*a.Heading)) {
		return fmt.Errorf("%w: action on entity %d", ErrNotFinite, e.ID())
	}
	if (a.VX != nil || a.VY != nil) && s.physMap.HasAll(e) {
		phys := s.physMap.Get(e)
		if a.VX != nil {
			phys.VX = *a.VX
		}
		if a.VY != nil {
			phys.VY = *a.VY
		}
	}
	if a.Heading != nil {
		xf := s.xformMap.Get(e)
		xf.Heading = normalizeAngle(*a.Heading)
	}
	return nil
}

// Step advances the simulation by one fixed time increment, running each
// resolver in registration order, then increments the tick.
func (s *Simulation) Step() {
	for _, r := range s.resolvers {
		r.Resolve(s)
	}
	s.tick++
}

// Reset discards all entities, zeroes the tick and reseeds the RNG. The
// entity store is reused, so handles from before the reset answer as dead
// instead of aliasing entities spawned afterwards. Two instances reset with
// the same seed and driven by the same call sequence produce identical
// state.
func (s *Simulation) Reset(seed int64) {
	var doomed []ecs.Entity
	query := s.allFilter.Query()
	for query.Next() {
		doomed = append(doomed, query.Entity())
	}
	for _, e := range doomed {
		s.world.RemoveEntity(e)
	}

	s.rng = rand.New(rand.NewSource(seed))
	s.seed = seed
	s.tick = 0
	s.counters = Counters{}
	s.grid.Clear()
	s.gridDirty = true
}

// Count returns the number of live entities, derived from the entity store.
func (s *Simulation) Count() int {
	n := 0
	query := s.allFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Tick returns the number of completed steps since creation or reset.
func (s *Simulation) Tick() int64 { return s.tick }

// Seed returns the seed the RNG was last initialized with.
func (s *Simulation) Seed() int64 { return s.seed }

// DT returns the fixed per-step time increment in seconds.
func (s *Simulation) DT() float32 { return s.dt }

// RNG returns the simulation's seeded random source. Resolvers that need
// randomness must draw from it, and only during Step, to keep runs
// reproducible.
func (s *Simulation) RNG() *rand.Rand { return s.rng }

// DrainCounters returns the accumulated event counters and resets them.
func (s *Simulation) DrainCounters() Counters {
	c := s.counters
	s.counters = Counters{}
	return c
}

func (s *Simulation) exists(e ecs.Entity) bool {
	return s.world.Alive(e) && s.metaMap.HasAll(e)
}

// ensureGrid rebuilds the spatial index if entities moved, spawned or
// despawned since the last rebuild.
func (s *Simulation) ensureGrid() {
	if !s.gridDirty {
		return
	}
	s.grid.Clear()
	query := s.allFilter.Query()
	for query.Next() {
		_, xf := query.Get()
		s.grid.Insert(query.Entity(), xf.X, xf.Y)
	}
	s.gridDirty = false
}
