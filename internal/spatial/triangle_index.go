package spatial

import "math"

// baryEpsilon admits points on shared edges despite rounding.
const baryEpsilon = 1e-9

// bucketsPerTriangle controls the bucket size relative to mean triangle size.
const bucketsPerTriangle = 0.5

// TriangleIndex locates the triangle containing a planar position using a
// uniform bucket grid. Each bucket lists the triangles whose bounding box
// overlaps it.
type TriangleIndex struct {
	tri      *Triangulation
	originX  float64
	originY  float64
	cellSize float64
	buckets  map[int64][]int // Cell ID → triangle indices
}

// NewTriangleIndex buckets every triangle of t.
func NewTriangleIndex(t *Triangulation) *TriangleIndex {
	ti := &TriangleIndex{tri: t}
	if len(t.Triangles) == 0 {
		ti.cellSize = 1
		ti.buckets = map[int64][]int{}
		return ti
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, tr := range t.Triangles {
		for _, v := range tr {
			minX = math.Min(minX, t.X[v])
			minY = math.Min(minY, t.Y[v])
			maxX = math.Max(maxX, t.X[v])
			maxY = math.Max(maxY, t.Y[v])
		}
	}
	ti.originX, ti.originY = minX, minY

	extent := (maxX - minX) * (maxY - minY)
	ti.cellSize = math.Sqrt(extent / (float64(len(t.Triangles)) * bucketsPerTriangle))
	if ti.cellSize <= 0 || math.IsNaN(ti.cellSize) || math.IsInf(ti.cellSize, 0) {
		ti.cellSize = math.Max(maxX-minX, maxY-minY)
		if ti.cellSize <= 0 {
			ti.cellSize = 1
		}
	}

	ti.buckets = make(map[int64][]int, len(t.Triangles))
	for i, tr := range t.Triangles {
		bx0, by0 := math.Inf(1), math.Inf(1)
		bx1, by1 := math.Inf(-1), math.Inf(-1)
		for _, v := range tr {
			bx0 = math.Min(bx0, t.X[v])
			by0 = math.Min(by0, t.Y[v])
			bx1 = math.Max(bx1, t.X[v])
			by1 = math.Max(by1, t.Y[v])
		}
		c0, r0 := ti.cellCoords(bx0, by0)
		c1, r1 := ti.cellCoords(bx1, by1)
		for cx := c0; cx <= c1; cx++ {
			for cy := r0; cy <= r1; cy++ {
				id := pairCell(cx, cy)
				ti.buckets[id] = append(ti.buckets[id], i)
			}
		}
	}
	return ti
}

func (ti *TriangleIndex) cellCoords(x, y float64) (int64, int64) {
	return int64(math.Floor((x - ti.originX) / ti.cellSize)),
		int64(math.Floor((y - ti.originY) / ti.cellSize))
}

// pairCell maps signed cell coordinates to a unique ID with zigzag encoding
// followed by Szudzik's pairing function.
func pairCell(cellX, cellY int64) int64 {
	var a, b int64
	if cellX >= 0 {
		a = 2 * cellX
	} else {
		a = -2*cellX - 1
	}
	if cellY >= 0 {
		b = 2 * cellY
	} else {
		b = -2*cellY - 1
	}
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

// Locate returns the index of a triangle containing (x, y) together with the
// barycentric weights of the position. ok is false outside the triangulation.
func (ti *TriangleIndex) Locate(x, y float64) (tri int, w [3]float64, ok bool) {
	cx, cy := ti.cellCoords(x, y)
	for _, i := range ti.buckets[pairCell(cx, cy)] {
		w0, w1, w2 := ti.tri.Barycentric(i, x, y)
		if w0 >= -baryEpsilon && w1 >= -baryEpsilon && w2 >= -baryEpsilon {
			return i, [3]float64{w0, w1, w2}, true
		}
	}
	return -1, w, false
}

// Interpolate evaluates the piecewise-linear surface defined by values at the
// triangulation vertices. Positions outside the triangulation yield NaN.
func (ti *TriangleIndex) Interpolate(values []float64, x, y float64) float64 {
	i, w, ok := ti.Locate(x, y)
	if !ok {
		return math.NaN()
	}
	tr := ti.tri.Triangles[i]
	return w[0]*values[tr[0]] + w[1]*values[tr[1]] + w[2]*values[tr[2]]
}
