package spatial

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestIndex(t *testing.T) {
	xs := []float64{0, 10, 0, 10, 5}
	ys := []float64{0, 0, 10, 10, 5}
	idx := NewNearestIndex(xs, ys)
	require.Equal(t, 5, idx.Len())

	tests := []struct {
		name  string
		x, y  float64
		want  int
		wantD float64
	}{
		{"exact corner", 0, 0, 0, 0},
		{"near centre", 5.5, 4.5, 4, math.Hypot(0.5, 0.5)},
		{"far corner", 12, 11, 3, math.Hypot(2, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, d := idx.Nearest(tt.x, tt.y)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, tt.wantD, d, 1e-12)
		})
	}
}

func TestNearestIndex_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 500
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = rng.Float64() * 100
		ys[i] = rng.Float64() * 100
	}
	idx := NewNearestIndex(xs, ys)

	for q := 0; q < 200; q++ {
		qx, qy := rng.Float64()*120-10, rng.Float64()*120-10
		best := math.Inf(1)
		for i := range xs {
			best = math.Min(best, math.Hypot(xs[i]-qx, ys[i]-qy))
		}
		got, d := idx.Nearest(qx, qy)
		require.GreaterOrEqual(t, got, 0)
		assert.InDelta(t, best, d, 1e-9)
		assert.InDelta(t, best, math.Hypot(xs[got]-qx, ys[got]-qy), 1e-9)
	}
}

func TestNearestIndex_Empty(t *testing.T) {
	idx := NewNearestIndex(nil, nil)
	got, d := idx.Nearest(1, 2)
	assert.Equal(t, -1, got)
	assert.True(t, math.IsInf(d, 1))
}

func TestTriangulate_UnitSquare(t *testing.T) {
	tri, err := Triangulate([]float64{0, 1, 1, 0}, []float64{0, 0, 1, 1})
	require.NoError(t, err)
	require.Len(t, tri.Triangles, 2)

	total := 0.0
	for i := range tri.Triangles {
		assert.Greater(t, tri.signedArea(tri.Triangles[i]), 0.0, "triangles are counter-clockwise")
		total += tri.Area(i)
		assert.InDelta(t, math.Sqrt2/2, tri.Circumradius(i), 1e-12)
	}
	assert.InDelta(t, 1.0, total, 1e-12)
}

func TestTriangulate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		xs, ys []float64
		want   error
	}{
		{"empty", nil, nil, ErrInsufficientPoints},
		{"two points", []float64{0, 1}, []float64{0, 1}, ErrInsufficientPoints},
		{"duplicates only", []float64{1, 1, 1, 2}, []float64{1, 1, 1, 2}, ErrInsufficientPoints},
		{"collinear", []float64{0, 1, 2, 3}, []float64{0, 1, 2, 3}, ErrDegenerateGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Triangulate(tt.xs, tt.ys)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := Triangulate([]float64{0, 1}, []float64{0})
	assert.Error(t, err)
}

func TestBarycentric(t *testing.T) {
	tri, err := Triangulate([]float64{0, 4, 0}, []float64{0, 0, 4})
	require.NoError(t, err)
	require.Len(t, tri.Triangles, 1)

	w0, w1, w2 := tri.Barycentric(0, 1, 1)
	assert.InDelta(t, 1.0, w0+w1+w2, 1e-12)
	for _, w := range []float64{w0, w1, w2} {
		assert.GreaterOrEqual(t, w, 0.0)
	}

	w0, w1, w2 = tri.Barycentric(0, 5, 5)
	assert.Less(t, math.Min(w0, math.Min(w1, w2)), 0.0)
}

func TestTriangleIndex_InterpolatesPlane(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 300
	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	for i := range xs {
		xs[i] = rng.Float64() * 50
		ys[i] = rng.Float64() * 50
		zs[i] = 2*xs[i] - ys[i] + 7
	}
	// Pin the corners so the hull covers the square.
	corners := [][2]float64{{0, 0}, {50, 0}, {50, 50}, {0, 50}}
	for _, c := range corners {
		xs = append(xs, c[0])
		ys = append(ys, c[1])
		zs = append(zs, 2*c[0]-c[1]+7)
	}

	tri, err := Triangulate(xs, ys)
	require.NoError(t, err)
	ti := NewTriangleIndex(tri)

	for q := 0; q < 500; q++ {
		x, y := rng.Float64()*50, rng.Float64()*50
		got := ti.Interpolate(zs, x, y)
		require.False(t, math.IsNaN(got), "(%v, %v) should be inside the hull", x, y)
		assert.InDelta(t, 2*x-y+7, got, 1e-6)
	}

	assert.True(t, math.IsNaN(ti.Interpolate(zs, -1, 25)))
	assert.True(t, math.IsNaN(ti.Interpolate(zs, 25, 51)))
}

func TestTriangleIndex_VertexAndEdge(t *testing.T) {
	tri, err := Triangulate([]float64{0, 1, 1, 0}, []float64{0, 0, 1, 1})
	require.NoError(t, err)
	ti := NewTriangleIndex(tri)
	zs := []float64{0, 1, 2, 1}

	assert.InDelta(t, 2.0, ti.Interpolate(zs, 1, 1), 1e-12)
	assert.InDelta(t, 0.5, ti.Interpolate(zs, 0.5, 0), 1e-12)
	_, _, ok := ti.Locate(1.5, 0.5)
	assert.False(t, ok)
}

func TestPairCell_Unique(t *testing.T) {
	seen := make(map[int64][2]int64)
	for x := int64(-20); x <= 20; x++ {
		for y := int64(-20); y <= 20; y++ {
			id := pairCell(x, y)
			if prev, ok := seen[id]; ok {
				t.Fatalf("pairCell(%d,%d) collides with %v", x, y, prev)
			}
			seen[id] = [2]int64{x, y}
		}
	}
}
