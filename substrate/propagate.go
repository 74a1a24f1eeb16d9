package substrate

import (
	"math"

	"github.com/fathom-sim/fathom/field"
)

// Step advances every field by dt seconds, then increments the tick.
//
// Diffusive fields relax toward their 6-neighbor mean:
//
//	cell' = cell + coeff*dt*(neighborMean - cell)
//
// with coeff*dt capped at 1, which keeps the update a convex combination
// of cell and neighbor mean and therefore unconditionally stable.
//
// Decaying fields shrink their above-ambient excess by exp(-rate*dt):
// strictly decreasing in magnitude, never reaching ambient in finite steps.
func (u *Universe) Step(dt float64) {
	for f := 0; f < field.Count; f++ {
		r := u.rates[f]
		if r.diffusion > 0 {
			u.diffuseField(f, r.diffusion, float32(dt))
		}
		if r.decay > 0 {
			u.decayField(f, r.decay, dt)
		}
	}
	u.tick++
	u.time += dt
}

// diffuseField writes the relaxed grid into the back buffer and swaps.
func (u *Universe) diffuseField(f int, rate, dt float32) {
	coeff := rate * dt
	if coeff > 1 {
		coeff = 1
	}

	src := u.grids[f]
	dst := u.back
	nx, ny, nz := u.nx, u.ny, u.nz

	for iz := 0; iz < nz; iz++ {
		for iy := 0; iy < ny; iy++ {
			base := (iz*ny + iy) * nx
			for ix := 0; ix < nx; ix++ {
				i := base + ix

				var sum float32
				var n int
				if ix > 0 {
					sum += src[i-1]
					n++
				}
				if ix < nx-1 {
					sum += src[i+1]
					n++
				}
				if iy > 0 {
					sum += src[i-nx]
					n++
				}
				if iy < ny-1 {
					sum += src[i+nx]
					n++
				}
				if iz > 0 {
					sum += src[i-nx*ny]
					n++
				}
				if iz < nz-1 {
					sum += src[i+nx*ny]
					n++
				}

				if n == 0 {
					dst[i] = src[i]
					continue
				}
				mean := sum / float32(n)
				dst[i] = src[i] + coeff*(mean-src[i])
			}
		}
	}

	u.grids[f], u.back = dst, src
}

// decayField shrinks each cell's excess over ambient.
func (u *Universe) decayField(f int, rate float32, dt float64) {
	factor := float32(math.Exp(-float64(rate) * dt))
	ambient := field.Spec(field.Field(f)).Ambient
	grid := u.grids[f]
	for i, v := range grid {
		grid[i] = ambient + (v-ambient)*factor
	}
}
