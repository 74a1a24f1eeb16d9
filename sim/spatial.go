package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/fathom-sim/fathom/components"
)

// Neighbor holds a nearby entity with precomputed spatial data, so callers
// do not recompute deltas and distances in hot paths.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float32
	DistSq float32
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 512

// Grid provides cell-bucketed neighbor lookups over the bounded arena.
// Coordinates are origin-centered; positions outside the arena clamp to the
// edge cells. There is no wrap-around.
type Grid struct {
	cellSize float32
	cols     int
	rows     int
	width    float32
	height   float32
	cells    [][]ecs.Entity
}

// NewGrid creates a grid covering an origin-centered arena of the given size.
func NewGrid(width, height, cellSize float32) *Grid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8)
	}

	return &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// Clear removes all entities from the grid, keeping bucket capacity.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *Grid) Insert(e ecs.Entity, x, y float32) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], e)
}

// QueryRadiusInto finds entities within radius of (x, y) and appends them to
// dst, up to MaxQueryResults. Returns the updated slice. Reuse dst across
// calls to avoid allocations.
func (g *Grid) QueryRadiusInto(dst []Neighbor, x, y, radius float32, exclude ecs.Entity, xformMap *ecs.Map1[components.Transform]) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1

	centerCol := g.col(x)
	centerRow := g.row(y)

	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}

			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				if !xformMap.HasAll(e) {
					continue
				}
				xf := xformMap.Get(e)

				dx := xf.X - x
				dy := xf.Y - y
				distSq := dx*dx + dy*dy

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

func (g *Grid) cellIndex(x, y float32) int {
	return g.row(y)*g.cols + g.col(x)
}

func (g *Grid) col(x float32) int {
	return clampIdx(int((x+g.width/2)/g.cellSize), g.cols-1)
}

func (g *Grid) row(y float32) int {
	return clampIdx(int((y+g.height/2)/g.cellSize), g.rows-1)
}

func clampIdx(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}
