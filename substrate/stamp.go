package substrate

import (
	"errors"
	"fmt"
	"math"

	"github.com/fathom-sim/fathom/field"
)

// StampKind selects a one-shot localized injection pattern.
type StampKind uint8

const (
	// StampFire heats a region toward combustion temperature and adds smoke.
	StampFire StampKind = iota
	// StampExplosion carves occupancy, injects heat and noise, damages integrity.
	StampExplosion
	// StampSonarPing raises sonar return and adds an acoustic impulse.
	StampSonarPing
)

// ErrInvalidStamp is returned for negative, NaN or infinite stamp parameters.
var ErrInvalidStamp = errors.New("substrate: invalid stamp parameters")

// String returns the stamp kind's name.
func (k StampKind) String() string {
	switch k {
	case StampFire:
		return "fire"
	case StampExplosion:
		return "explosion"
	case StampSonarPing:
		return "sonar_ping"
	default:
		return fmt.Sprintf("stamp(%d)", uint8(k))
	}
}

// ParseStampKind resolves a stamp kind by name.
func ParseStampKind(name string) (StampKind, error) {
	switch name {
	case "fire":
		return StampFire, nil
	case "explosion":
		return StampExplosion, nil
	case "sonar_ping":
		return StampSonarPing, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidStamp, name)
	}
}

// ApplyStamp mutates the grids inside radius of center immediately. Stamps
// have no standing lifecycle: their only trace is the field values they
// changed, which then evolve under Step.
//
// The center cell receives the full effect; the weight falls off linearly
// with distance and cells at or beyond radius are untouched. Negative
// radius or intensity is a configuration error, not clamped.
func (u *Universe) ApplyStamp(kind StampKind, center Vec3, radius, intensity float32) error {
	if radius < 0 || intensity < 0 ||
		hasNaN32(center.X, center.Y, center.Z, radius, intensity) {
		return fmt.Errorf("%w: kind=%s radius=%g intensity=%g", ErrInvalidStamp, kind, radius, intensity)
	}
	if kind != StampFire && kind != StampExplosion && kind != StampSonarPing {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidStamp, uint8(kind))
	}
	if radius == 0 {
		return nil
	}

	// Bounding box of the affected sphere, clamped to the grid.
	lox, loy, loz := u.cellAt(Vec3{center.X - radius, center.Y - radius, center.Z - radius})
	hix, hiy, hiz := u.cellAt(Vec3{center.X + radius, center.Y + radius, center.Z + radius})

	for iz := loz; iz <= hiz; iz++ {
		for iy := loy; iy <= hiy; iy++ {
			for ix := lox; ix <= hix; ix++ {
				c := u.cellCenter(ix, iy, iz)
				dx := c.X - center.X
				dy := c.Y - center.Y
				dz := c.Z - center.Z
				dist := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
				if dist >= radius {
					continue
				}
				w := 1 - dist/radius
				u.stampCell(kind, u.index(ix, iy, iz), intensity, w)
			}
		}
	}
	return nil
}

// stampCell applies one kind's field modifications to a single cell with
// falloff weight w in (0, 1].
func (u *Universe) stampCell(kind StampKind, idx int, intensity, w float32) {
	switch kind {
	case StampFire:
		// Pull temperature toward combustion heat, deposit smoke.
		u.blendLerp(field.Temperature, idx, 800, 0.1*w)
		u.blendAdd(field.Smoke, idx, 0.3*intensity*w)
	case StampExplosion:
		u.blendAdd(field.Occupancy, idx, -0.8*intensity*w)
		u.blendAdd(field.Temperature, idx, 500*intensity*w)
		u.blendAdd(field.Noise, idx, 120*intensity*w)
		u.blendMul(field.Integrity, idx, 1-0.8*intensity*w)
	case StampSonarPing:
		u.blendMax(field.SonarReturn, idx, intensity, w)
		u.blendAdd(field.Noise, idx, 80*w)
	}
}

func (u *Universe) blendAdd(f field.Field, idx int, delta float32) {
	g := u.grids[f.Index()]
	g[idx] = field.Spec(f).Clamp(g[idx] + delta)
}

func (u *Universe) blendMul(f field.Field, idx int, factor float32) {
	g := u.grids[f.Index()]
	g[idx] = field.Spec(f).Clamp(g[idx] * factor)
}

// blendMax eases the cell toward max(current, v) by the falloff weight.
func (u *Universe) blendMax(f field.Field, idx int, v, w float32) {
	g := u.grids[f.Index()]
	cur := g[idx]
	target := cur
	if v > target {
		target = v
	}
	g[idx] = field.Spec(f).Clamp(cur + (target-cur)*w)
}

func (u *Universe) blendLerp(f field.Field, idx int, target, t float32) {
	g := u.grids[f.Index()]
	g[idx] = field.Spec(f).Clamp(g[idx] + (target-g[idx])*t)
}
