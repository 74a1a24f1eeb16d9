package substrate

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/fathom-sim/fathom/field"
)

// ErrBadQuery is returned for negative, NaN or infinite query radii.
var ErrBadQuery = errors.New("substrate: invalid query parameters")

// PointResult holds per-field values read at one position.
type PointResult struct {
	Values field.Values
}

// Get returns the value for a field.
func (r PointResult) Get(f field.Field) float32 { return r.Values.Get(f) }

// GetName returns the value for a field addressed by name.
func (r PointResult) GetName(name string) (float32, error) {
	return r.Values.GetName(name)
}

// QueryPoint reads every field at pos via trilinear interpolation over the
// surrounding cell centers, so small position deltas never cause jumps
// beyond neighboring-cell granularity. Out-of-bounds positions clamp to
// the boundary cells.
func (u *Universe) QueryPoint(pos Vec3) PointResult {
	gx := (pos.X+u.width/2)/u.resolution - 0.5
	gy := (pos.Y+u.height/2)/u.resolution - 0.5
	gz := (pos.Z+u.depth/2)/u.resolution - 0.5

	x0, fx := splitCoord(gx, u.nx)
	y0, fy := splitCoord(gy, u.ny)
	z0, fz := splitCoord(gz, u.nz)
	x1 := clampInt(x0+1, 0, u.nx-1)
	y1 := clampInt(y0+1, 0, u.ny-1)
	z1 := clampInt(z0+1, 0, u.nz-1)

	var out PointResult
	for f := 0; f < field.Count; f++ {
		g := u.grids[f]

		c000 := g[u.index(x0, y0, z0)]
		c100 := g[u.index(x1, y0, z0)]
		c010 := g[u.index(x0, y1, z0)]
		c110 := g[u.index(x1, y1, z0)]
		c001 := g[u.index(x0, y0, z1)]
		c101 := g[u.index(x1, y0, z1)]
		c011 := g[u.index(x0, y1, z1)]
		c111 := g[u.index(x1, y1, z1)]

		c00 := lerp(c000, c100, fx)
		c10 := lerp(c010, c110, fx)
		c01 := lerp(c001, c101, fx)
		c11 := lerp(c011, c111, fx)

		c0 := lerp(c00, c10, fy)
		c1 := lerp(c01, c11, fy)

		out.Values.Set(field.Field(f), lerp(c0, c1, fz))
	}
	return out
}

// splitCoord clamps a fractional grid coordinate and returns the lower
// cell index plus the interpolation fraction.
func splitCoord(g float32, n int) (int, float32) {
	if g <= 0 {
		return 0, 0
	}
	max := float32(n - 1)
	if g >= max {
		return n - 1, 0
	}
	i := int(g)
	return i, g - float32(i)
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// ScalarStats summarizes one field over the cells visited by a volume query.
type ScalarStats struct {
	Mean     float32
	Min      float32
	Max      float32
	Variance float32
}

// QueryResult aggregates every field over all cells within a radius.
type QueryResult struct {
	stats [field.Count]ScalarStats
	// NodesVisited is the number of cells examined.
	NodesVisited int
}

// Stats returns the full summary for a field.
func (r *QueryResult) Stats(f field.Field) ScalarStats { return r.stats[f.Index()] }

// Mean returns the mean value for a field.
func (r *QueryResult) Mean(f field.Field) float32 { return r.stats[f.Index()].Mean }

// Min returns the minimum value for a field.
func (r *QueryResult) Min(f field.Field) float32 { return r.stats[f.Index()].Min }

// Max returns the maximum value for a field.
func (r *QueryResult) Max(f field.Field) float32 { return r.stats[f.Index()].Max }

// Variance returns the value variance for a field.
func (r *QueryResult) Variance(f field.Field) float32 { return r.stats[f.Index()].Variance }

// Get returns the field's canonical aggregate: mean, max or min according
// to the field's spec.
func (r *QueryResult) Get(f field.Field) float32 {
	switch field.Spec(f).Aggregation {
	case field.AggMax:
		return r.stats[f.Index()].Max
	case field.AggMin:
		return r.stats[f.Index()].Min
	default:
		return r.stats[f.Index()].Mean
	}
}

// The ...Name accessors resolve the field through the canonical name table
// and agree exactly with their enum counterparts.

// StatsName is Stats addressed by field name.
func (r *QueryResult) StatsName(name string) (ScalarStats, error) {
	f, err := field.Parse(name)
	if err != nil {
		return ScalarStats{}, err
	}
	return r.Stats(f), nil
}

// MeanName is Mean addressed by field name.
func (r *QueryResult) MeanName(name string) (float32, error) {
	f, err := field.Parse(name)
	if err != nil {
		return 0, err
	}
	return r.Mean(f), nil
}

// MinName is Min addressed by field name.
func (r *QueryResult) MinName(name string) (float32, error) {
	f, err := field.Parse(name)
	if err != nil {
		return 0, err
	}
	return r.Min(f), nil
}

// MaxName is Max addressed by field name.
func (r *QueryResult) MaxName(name string) (float32, error) {
	f, err := field.Parse(name)
	if err != nil {
		return 0, err
	}
	return r.Max(f), nil
}

// VarianceName is Variance addressed by field name.
func (r *QueryResult) VarianceName(name string) (float32, error) {
	f, err := field.Parse(name)
	if err != nil {
		return 0, err
	}
	return r.Variance(f), nil
}

// GetName is Get addressed by field name.
func (r *QueryResult) GetName(name string) (float32, error) {
	f, err := field.Parse(name)
	if err != nil {
		return 0, err
	}
	return r.Get(f), nil
}

// QueryVolume visits every cell whose center lies within radius of center
// and summarizes each field over the visited cells. A radius smaller than
// one cell still visits the containing cell.
func (u *Universe) QueryVolume(center Vec3, radius float32) (QueryResult, error) {
	if radius < 0 || hasNaN32(center.X, center.Y, center.Z, radius) {
		return QueryResult{}, fmt.Errorf("%w: center=%v radius=%g", ErrBadQuery, center, radius)
	}

	for f := range u.samples {
		u.samples[f] = u.samples[f][:0]
	}

	lox, loy, loz := u.cellAt(Vec3{center.X - radius, center.Y - radius, center.Z - radius})
	hix, hiy, hiz := u.cellAt(Vec3{center.X + radius, center.Y + radius, center.Z + radius})
	radiusSq := radius * radius

	visited := 0
	for iz := loz; iz <= hiz; iz++ {
		for iy := loy; iy <= hiy; iy++ {
			for ix := lox; ix <= hix; ix++ {
				c := u.cellCenter(ix, iy, iz)
				dx := c.X - center.X
				dy := c.Y - center.Y
				dz := c.Z - center.Z
				if dx*dx+dy*dy+dz*dz > radiusSq {
					continue
				}
				idx := u.index(ix, iy, iz)
				for f := 0; f < field.Count; f++ {
					u.samples[f] = append(u.samples[f], float64(u.grids[f][idx]))
				}
				visited++
			}
		}
	}

	if visited == 0 {
		// Degenerate radius: fall back to the containing cell.
		ix, iy, iz := u.cellAt(center)
		idx := u.index(ix, iy, iz)
		for f := 0; f < field.Count; f++ {
			u.samples[f] = append(u.samples[f], float64(u.grids[f][idx]))
		}
		visited = 1
	}

	var out QueryResult
	out.NodesVisited = visited
	for f := 0; f < field.Count; f++ {
		xs := u.samples[f]
		s := ScalarStats{
			Mean: float32(stat.Mean(xs, nil)),
			Min:  float32(floats.Min(xs)),
			Max:  float32(floats.Max(xs)),
		}
		if len(xs) > 1 {
			s.Variance = float32(stat.Variance(xs, nil))
		}
		out.stats[f] = s
	}
	return out, nil
}
