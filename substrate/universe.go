// Package substrate implements the spatial field simulation: a bounded 3D
// volume carrying one dense grid per scalar field, mutated by one-shot
// stamps and advanced each tick by diffusion and decay.
package substrate

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/fathom-sim/fathom/config"
	"github.com/fathom-sim/fathom/field"
)

// ErrBadDimensions is returned for non-positive extents or resolution.
var ErrBadDimensions = errors.New("substrate: dimensions and resolution must be positive")

// Vec3 is a position in world coordinates. The volume is centered on the
// origin: x spans [-width/2, width/2] and likewise for y and z.
type Vec3 struct {
	X, Y, Z float32
}

// rates holds the effective propagation rates for one field, after any
// config override.
type rates struct {
	diffusion float32
	decay     float32
}

// Universe owns the discretized grid storage for every scalar field.
// One Universe is driven by a single caller; instances share no state,
// so many can run in parallel across training environments.
type Universe struct {
	width, height, depth float32
	resolution           float32
	nx, ny, nz           int

	grids [field.Count][]float32
	rates [field.Count]rates

	// Scratch buffers reused across calls to keep stepping and volume
	// queries allocation-free.
	back    []float32
	samples [field.Count][]float64

	tick   uint64
	time   float64
	rng    *rand.Rand
	seed   int64
	seeded bool
}

// New creates a universe with the given extents and cell resolution.
// Cell count scales inversely with resolution cubed; training code runs
// coarse grids for wide environment batches.
func New(width, height, depth, resolution float32) (*Universe, error) {
	if width <= 0 || height <= 0 || depth <= 0 || resolution <= 0 ||
		hasNaN32(width, height, depth, resolution) {
		return nil, fmt.Errorf("%w: %gx%gx%g @ %g", ErrBadDimensions, width, height, depth, resolution)
	}

	u := &Universe{
		width:      width,
		height:     height,
		depth:      depth,
		resolution: resolution,
		nx:         cellsAlong(width, resolution),
		ny:         cellsAlong(height, resolution),
		nz:         cellsAlong(depth, resolution),
		rng:        rand.New(rand.NewSource(0)),
	}

	n := u.nx * u.ny * u.nz
	for f := 0; f < field.Count; f++ {
		u.grids[f] = make([]float32, n)
		spec := field.Spec(field.Field(f))
		u.rates[f] = rates{diffusion: spec.Diffusion, decay: spec.Decay}
	}
	u.back = make([]float32, n)
	u.fillAmbient()

	return u, nil
}

// NewSeeded creates a universe with a deterministic RNG stream. Two
// universes built with the same seed and driven by the same call sequence
// produce bit-identical state.
func NewSeeded(width, height, depth, resolution float32, seed int64) (*Universe, error) {
	u, err := New(width, height, depth, resolution)
	if err != nil {
		return nil, err
	}
	u.seed = seed
	u.seeded = true
	u.rng = rand.New(rand.NewSource(seed))
	return u, nil
}

// ApplyRateOverrides installs per-field propagation rates from config.
func (u *Universe) ApplyRateOverrides(overrides []config.FieldRateConfig) error {
	for _, o := range overrides {
		f, err := field.Parse(o.Name)
		if err != nil {
			return err
		}
		u.rates[f.Index()] = rates{
			diffusion: float32(o.Diffusion),
			decay:     float32(o.Decay),
		}
	}
	return nil
}

// Tick returns the number of completed steps since creation or reset.
func (u *Universe) Tick() uint64 { return u.tick }

// Time returns the accumulated simulation time in seconds.
func (u *Universe) Time() float64 { return u.time }

// Seed returns the construction seed and whether one was given.
func (u *Universe) Seed() (int64, bool) { return u.seed, u.seeded }

// Bounds returns the world extents (width, height, depth).
func (u *Universe) Bounds() (float32, float32, float32) {
	return u.width, u.height, u.depth
}

// GridSize returns the cell counts along each axis.
func (u *Universe) GridSize() (int, int, int) { return u.nx, u.ny, u.nz }

// CellCount returns the number of cells in one field grid.
func (u *Universe) CellCount() int { return u.nx * u.ny * u.nz }

// Reset restores every field to its ambient baseline, discards all stamp
// effects and zeroes the tick. When the universe was created seeded, the
// RNG is re-seeded for deterministic replay.
func (u *Universe) Reset() {
	u.fillAmbient()
	u.tick = 0
	u.time = 0
	if u.seeded {
		u.rng = rand.New(rand.NewSource(u.seed))
	}
}

// ResetSeed is Reset with a fresh seed for the RNG stream.
func (u *Universe) ResetSeed(seed int64) {
	u.seed = seed
	u.seeded = true
	u.Reset()
}

// SetPoint writes a raw value into the cell containing pos, clamped to the
// field's valid range. Used for scenario setup.
func (u *Universe) SetPoint(pos Vec3, f field.Field, value float32) {
	ix, iy, iz := u.cellAt(pos)
	u.grids[f.Index()][u.index(ix, iy, iz)] = field.Spec(f).Clamp(value)
}

// StateHash computes a deterministic hash over all grid values and the
// tick counter. Identical operation sequences on identically seeded
// universes produce identical hashes.
func (u *Universe) StateHash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	buf[0] = byte(u.tick)
	buf[1] = byte(u.tick >> 8)
	buf[2] = byte(u.tick >> 16)
	buf[3] = byte(u.tick >> 24)
	buf[4] = byte(u.tick >> 32)
	buf[5] = byte(u.tick >> 40)
	buf[6] = byte(u.tick >> 48)
	buf[7] = byte(u.tick >> 56)
	h.Write(buf[:])

	for f := 0; f < field.Count; f++ {
		for _, v := range u.grids[f] {
			bits := math.Float32bits(v)
			buf[0] = byte(bits)
			buf[1] = byte(bits >> 8)
			buf[2] = byte(bits >> 16)
			buf[3] = byte(bits >> 24)
			h.Write(buf[:4])
		}
	}
	return h.Sum64()
}

func (u *Universe) fillAmbient() {
	for f := 0; f < field.Count; f++ {
		ambient := field.Spec(field.Field(f)).Ambient
		grid := u.grids[f]
		for i := range grid {
			grid[i] = ambient
		}
	}
}

func cellsAlong(extent, resolution float32) int {
	n := int(math.Ceil(float64(extent / resolution)))
	if n < 1 {
		n = 1
	}
	return n
}

func hasNaN32(vs ...float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return false
}
