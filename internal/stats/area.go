package stats

import (
	"fmt"
	"math"

	"github.com/banshee-data/volumetrics/internal/pointcloud"
	"github.com/banshee-data/volumetrics/internal/spatial"
	"github.com/banshee-data/volumetrics/internal/surface"
)

// Area3D triangulates the points in plan and sums the true 3D area of every
// triangle. At least three distinct (x, y) positions are required.
func Area3D(points pointcloud.Cloud) (float64, error) {
	if points.DistinctXY() < 3 {
		return math.NaN(), fmt.Errorf("%w: %d distinct positions", ErrInsufficientPoints, points.DistinctXY())
	}
	xs, ys, zs := points.XYZ()
	tri, err := spatial.Triangulate(xs, ys)
	if err != nil {
		return math.NaN(), err
	}

	total := 0.0
	for _, t := range tri.Triangles {
		a := dist3(xs, ys, zs, t[0], t[1])
		b := dist3(xs, ys, zs, t[1], t[2])
		c := dist3(xs, ys, zs, t[2], t[0])
		total += heron(a, b, c)
	}
	return total, nil
}

// heron returns the area of a triangle with side lengths a, b, c. Rounding
// can push the radicand of a sliver below zero; such triangles count as 0.
func heron(a, b, c float64) float64 {
	s := (a + b + c) / 2
	r := s * (s - a) * (s - b) * (s - c)
	if !(r > 0) {
		return 0
	}
	return math.Sqrt(r)
}

func dist3(xs, ys, zs []float64, i, j int) float64 {
	dx := xs[i] - xs[j]
	dy := ys[i] - ys[j]
	dz := zs[i] - zs[j]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Area25D measures the surface area of the raster inside a mask. Every
// lattice square whose four corners are inside and hold data is split into
// two triangles whose 3D areas are summed.
func Area25D(g *surface.Grid, m Mask) (float64, error) {
	total := 0.0
	quads := 0
	for r := 0; r+1 < g.Rows; r++ {
		for c := 0; c+1 < g.Cols; c++ {
			i00, i01 := g.Index(r, c), g.Index(r, c+1)
			i10, i11 := g.Index(r+1, c), g.Index(r+1, c+1)
			if !usable(g, m, i00) || !usable(g, m, i01) || !usable(g, m, i10) || !usable(g, m, i11) {
				continue
			}
			total += triangleArea(g, i00, i01, i11) + triangleArea(g, i00, i11, i10)
			quads++
		}
	}
	if quads == 0 {
		return math.NaN(), fmt.Errorf("%w: no complete raster square inside region", ErrInsufficientPoints)
	}
	return total, nil
}

func usable(g *surface.Grid, m Mask, i int) bool {
	return m.Inside[i] && !math.IsNaN(g.Z[i])
}

// triangleArea is half the norm of the cross product of two edge vectors.
func triangleArea(g *surface.Grid, a, b, c int) float64 {
	ux, uy, uz := g.X[b]-g.X[a], g.Y[b]-g.Y[a], g.Z[b]-g.Z[a]
	vx, vy, vz := g.X[c]-g.X[a], g.Y[c]-g.Y[a], g.Z[c]-g.Z[a]
	cx := uy*vz - uz*vy
	cy := uz*vx - ux*vz
	cz := ux*vy - uy*vx
	return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
}
