package substrate

import (
	"errors"
	"fmt"
	"math"

	"github.com/fathom-sim/fathom/config"
	"github.com/fathom-sim/fathom/field"
)

// ErrInvalidShell is returned when a shell descriptor is malformed or
// missing a required attribute. Shells are never silently defaulted.
var ErrInvalidShell = errors.New("substrate: invalid foveated shell")

// Shell is one angular band [RadiusInner, RadiusOuter) around an observer,
// subdivided into Sectors equal wedges. Sector 0 is centered on the
// observer heading; subsequent sectors proceed counterclockwise.
type Shell struct {
	RadiusInner float32
	RadiusOuter float32
	Sectors     int
}

// Validate reports whether the shell descriptor is usable.
func (s Shell) Validate() error {
	if s.Sectors <= 0 {
		return fmt.Errorf("%w: sectors must be positive, got %d", ErrInvalidShell, s.Sectors)
	}
	if s.RadiusInner < 0 || hasNaN32(s.RadiusInner, s.RadiusOuter) {
		return fmt.Errorf("%w: inner radius %g", ErrInvalidShell, s.RadiusInner)
	}
	if s.RadiusOuter <= s.RadiusInner {
		return fmt.Errorf("%w: outer radius %g must exceed inner %g", ErrInvalidShell, s.RadiusOuter, s.RadiusInner)
	}
	return nil
}

// foveaFields is the fixed per-sector field order of a foveated vector.
var foveaFields = [4]field.Field{
	field.Temperature,
	field.Noise,
	field.Occupancy,
	field.SonarReturn,
}

// FoveaFieldCount is the number of fields sampled per sector.
const FoveaFieldCount = len(foveaFields)

// DefaultShells returns the standing shells used when an observation
// request passes none: fine angular resolution near, coarse far.
func DefaultShells() []Shell {
	return []Shell{
		{RadiusInner: 0, RadiusOuter: 10, Sectors: 16},
		{RadiusInner: 10, RadiusOuter: 50, Sectors: 8},
		{RadiusInner: 50, RadiusOuter: 200, Sectors: 4},
	}
}

// ShellsFromConfig converts configured shells, validating each.
func ShellsFromConfig(cfg *config.Config) ([]Shell, error) {
	shells := make([]Shell, 0, len(cfg.Fovea.Shells))
	for _, sc := range cfg.Fovea.Shells {
		s := Shell{
			RadiusInner: float32(sc.RadiusInner),
			RadiusOuter: float32(sc.RadiusOuter),
			Sectors:     sc.Sectors,
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		shells = append(shells, s)
	}
	return shells, nil
}

// FoveatedLen returns the output length for a shell list.
func FoveatedLen(shells []Shell) int {
	n := 0
	for _, s := range shells {
		n += s.Sectors
	}
	return n * FoveaFieldCount
}

// ObserveFoveated samples the substrate around pos into a fixed-length
// vector: for each shell (caller order), for each sector (index order,
// sector 0 centered on heading, counterclockwise), the mean of each field
// in the order [temperature, noise, occupancy, sonar_return] over the
// wedge's cells. Empty wedges report the field's ambient baseline.
//
// Aggregation covers the z-layer slab containing pos. Passing nil shells
// uses DefaultShells (length 112).
func (u *Universe) ObserveFoveated(pos Vec3, heading float32, shells []Shell) ([]float32, error) {
	if shells == nil {
		shells = DefaultShells()
	}
	for _, s := range shells {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	if hasNaN32(pos.X, pos.Y, pos.Z, heading) {
		return nil, fmt.Errorf("%w: position or heading not finite", ErrBadQuery)
	}

	out := make([]float32, 0, FoveatedLen(shells))
	_, _, iz := u.cellAt(pos)

	for _, shell := range shells {
		out = u.appendShell(out, pos, heading, shell, iz)
	}
	return out, nil
}

// appendShell aggregates one annulus into per-sector field means and
// appends them to dst.
func (u *Universe) appendShell(dst []float32, pos Vec3, heading float32, shell Shell, iz int) []float32 {
	sectors := shell.Sectors
	sums := make([]float64, sectors*FoveaFieldCount)
	counts := make([]int, sectors)

	sectorWidth := 2 * math.Pi / float64(sectors)

	lox, loy, _ := u.cellAt(Vec3{pos.X - shell.RadiusOuter, pos.Y - shell.RadiusOuter, pos.Z})
	hix, hiy, _ := u.cellAt(Vec3{pos.X + shell.RadiusOuter, pos.Y + shell.RadiusOuter, pos.Z})

	innerSq := shell.RadiusInner * shell.RadiusInner
	outerSq := shell.RadiusOuter * shell.RadiusOuter

	for iy := loy; iy <= hiy; iy++ {
		for ix := lox; ix <= hix; ix++ {
			c := u.cellCenter(ix, iy, iz)
			dx := c.X - pos.X
			dy := c.Y - pos.Y
			distSq := dx*dx + dy*dy
			if distSq < innerSq || distSq >= outerSq {
				continue
			}

			// Sector 0 is centered on the heading, so offset by half a
			// sector width before binning.
			rel := math.Atan2(float64(dy), float64(dx)) - float64(heading) + sectorWidth/2
			rel = math.Mod(rel, 2*math.Pi)
			if rel < 0 {
				rel += 2 * math.Pi
			}
			sector := int(rel / sectorWidth)
			if sector >= sectors {
				sector = sectors - 1
			}

			idx := u.index(ix, iy, iz)
			base := sector * FoveaFieldCount
			for fi, f := range foveaFields {
				sums[base+fi] += float64(u.grids[f.Index()][idx])
			}
			counts[sector]++
		}
	}

	for sector := 0; sector < sectors; sector++ {
		base := sector * FoveaFieldCount
		if counts[sector] == 0 {
			for _, f := range foveaFields {
				dst = append(dst, field.Spec(f).Ambient)
			}
			continue
		}
		inv := 1 / float64(counts[sector])
		for fi := range foveaFields {
			dst = append(dst, float32(sums[base+fi]*inv))
		}
	}
	return dst
}
