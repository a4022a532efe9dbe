package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/fogleman/delaunay"
)

var (
	// ErrInsufficientPoints is returned when fewer than three distinct planar
	// positions are available for triangulation.
	ErrInsufficientPoints = errors.New("insufficient points for triangulation")

	// ErrDegenerateGeometry is returned when input has no area, e.g. all
	// positions are collinear.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// Triangle holds three vertex indices into the triangulated positions,
// ordered counter-clockwise.
type Triangle [3]int

// Triangulation is a planar Delaunay triangulation. Vertex indices refer to
// the xs/ys slices passed to Triangulate; duplicate positions are left out of
// every triangle.
type Triangulation struct {
	X, Y      []float64
	Triangles []Triangle
}

// Triangulate computes the Delaunay triangulation of (xs[i], ys[i]).
func Triangulate(xs, ys []float64) (*Triangulation, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("coordinate length mismatch: %d x, %d y", len(xs), len(ys))
	}
	if distinctPositions(xs, ys, 3) < 3 {
		return nil, ErrInsufficientPoints
	}

	pts := make([]delaunay.Point, len(xs))
	for i := range xs {
		pts[i] = delaunay.Point{X: xs[i], Y: ys[i]}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateGeometry, err)
	}
	if tri == nil || len(tri.Triangles) < 3 {
		return nil, ErrDegenerateGeometry
	}

	out := &Triangulation{
		X:         xs,
		Y:         ys,
		Triangles: make([]Triangle, 0, len(tri.Triangles)/3),
	}
	for i := 0; i+2 < len(tri.Triangles); i += 3 {
		t := Triangle{tri.Triangles[i], tri.Triangles[i+1], tri.Triangles[i+2]}
		if out.signedArea(t) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		out.Triangles = append(out.Triangles, t)
	}
	return out, nil
}

// distinctPositions counts distinct positions, stopping once limit is reached.
func distinctPositions(xs, ys []float64, limit int) int {
	seen := make(map[[2]float64]struct{}, limit)
	for i := range xs {
		seen[[2]float64{xs[i], ys[i]}] = struct{}{}
		if len(seen) >= limit {
			break
		}
	}
	return len(seen)
}

func (t *Triangulation) signedArea(tr Triangle) float64 {
	ax, ay := t.X[tr[0]], t.Y[tr[0]]
	bx, by := t.X[tr[1]], t.Y[tr[1]]
	cx, cy := t.X[tr[2]], t.Y[tr[2]]
	return 0.5 * ((bx-ax)*(cy-ay) - (cx-ax)*(by-ay))
}

// Area returns the planar area of triangle i.
func (t *Triangulation) Area(i int) float64 {
	return math.Abs(t.signedArea(t.Triangles[i]))
}

// Circumradius returns the radius of the circle through triangle i's vertices.
// Zero-area triangles return +Inf.
func (t *Triangulation) Circumradius(i int) float64 {
	tr := t.Triangles[i]
	a := math.Hypot(t.X[tr[1]]-t.X[tr[0]], t.Y[tr[1]]-t.Y[tr[0]])
	b := math.Hypot(t.X[tr[2]]-t.X[tr[1]], t.Y[tr[2]]-t.Y[tr[1]])
	c := math.Hypot(t.X[tr[0]]-t.X[tr[2]], t.Y[tr[0]]-t.Y[tr[2]])
	area := t.Area(i)
	if area == 0 {
		return math.Inf(1)
	}
	return a * b * c / (4 * area)
}

// Barycentric returns the barycentric weights of (x, y) with respect to
// triangle i. All weights are non-negative when the point lies inside or on
// the triangle.
func (t *Triangulation) Barycentric(i int, x, y float64) (w0, w1, w2 float64) {
	tr := t.Triangles[i]
	ax, ay := t.X[tr[0]], t.Y[tr[0]]
	bx, by := t.X[tr[1]], t.Y[tr[1]]
	cx, cy := t.X[tr[2]], t.Y[tr[2]]

	det := (by-cy)*(ax-cx) + (cx-bx)*(ay-cy)
	if det == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	w0 = ((by-cy)*(x-cx) + (cx-bx)*(y-cy)) / det
	w1 = ((cy-ay)*(x-cx) + (ax-cx)*(y-cy)) / det
	w2 = 1 - w0 - w1
	return w0, w1, w2
}
