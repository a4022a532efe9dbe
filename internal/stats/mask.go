package stats

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/banshee-data/volumetrics/internal/surface"
)

// Mask records which grid cells fall inside a polygon, with the coordinates
// of the inside cells in grid order.
type Mask struct {
	Inside  []bool // len == grid.Len()
	X, Y, Z []float64
}

// Count returns the number of inside cells.
func (m Mask) Count() int { return len(m.Z) }

// MaskRegion tests every cell coordinate of g against polygon. A cell on the
// outer ring counts as inside; a cell inside or on a hole is outside.
func MaskRegion(g *surface.Grid, polygon orb.Polygon) Mask {
	m := Mask{Inside: make([]bool, g.Len())}
	if len(polygon) == 0 || len(polygon[0]) == 0 {
		return m
	}

	bound := polygon.Bound()
	for i := range g.Z {
		p := orb.Point{g.X[i], g.Y[i]}
		if !bound.Contains(p) || !planar.PolygonContains(polygon, p) {
			continue
		}
		m.Inside[i] = true
		m.X = append(m.X, g.X[i])
		m.Y = append(m.Y, g.Y[i])
		m.Z = append(m.Z, g.Z[i])
	}
	return m
}
