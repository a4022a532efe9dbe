package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/volumetrics/internal/monitoring"
	"github.com/banshee-data/volumetrics/internal/pointcloud"
	"github.com/banshee-data/volumetrics/internal/surface"
	"github.com/banshee-data/volumetrics/internal/testutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func mustGrid(t *testing.T, cloud pointcloud.Cloud, gsd float64, mode surface.Mode) *surface.Grid {
	t.Helper()
	g, err := surface.Build(cloud, gsd, mode)
	require.NoError(t, err)
	return g
}

func TestVolume(t *testing.T) {
	tests := []struct {
		name string
		base float64
		z    []float64
		gsd  float64
		want float64
	}{
		{"empty", 0, nil, 1, 0},
		{"all above", 1, []float64{2, 3}, 0.5, (1 + 2) * 0.25},
		{"below base clamps", 5, []float64{1, 2, 6}, 1, 1},
		{"nan skipped", 0, []float64{math.NaN(), 2}, 2, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Volume(tt.base, tt.z, tt.gsd), 1e-12)
		})
	}
}

func TestVolume_NeverNegative(t *testing.T) {
	z := []float64{-10, -3, 0.5, -1e9, 2}
	for _, base := range []float64{-100, 0, 1, 3, 1e6} {
		assert.GreaterOrEqual(t, Volume(base, z, 0.1), 0.0)
	}
}

func TestMaskRegion_Partition(t *testing.T) {
	g := mustGrid(t, testutil.Pyramid(4, 6, 2000, 5, 1), 0.1, surface.NearestNeighbour)
	poly := orb.Polygon{orb.Ring{{-1.23, -0.7}, {1.5, -1.1}, {0.4, 1.8}, {-1.23, -0.7}}}

	m := MaskRegion(g, poly)
	require.Len(t, m.Inside, g.Len())

	inside, outside := 0, 0
	for _, in := range m.Inside {
		if in {
			inside++
		} else {
			outside++
		}
	}
	assert.Equal(t, g.Len(), inside+outside)
	assert.Equal(t, inside, m.Count())
	assert.Len(t, m.X, inside)
	assert.Len(t, m.Y, inside)
	assert.Greater(t, inside, 0)
	assert.Greater(t, outside, 0)
}

func TestMaskRegion_BoundaryInclusive(t *testing.T) {
	// 4x4 lattice at integer coordinates 0..3.
	g, err := surface.NewGrid(0, 0, 1, 4, 4, make([]float64, 16))
	require.NoError(t, err)

	m := MaskRegion(g, testutil.Square(1, 1, 2))
	// Cells (1..3, 1..3) lie inside or on the square [1,3]².
	assert.Equal(t, 9, m.Count())
	assert.True(t, m.Inside[g.Index(1, 1)], "corner vertex is inside")
	assert.True(t, m.Inside[g.Index(2, 3)], "edge cell is inside")
	assert.False(t, m.Inside[g.Index(0, 1)])
}

func TestMaskRegion_HoleExcluded(t *testing.T) {
	g, err := surface.NewGrid(0, 0, 1, 7, 7, make([]float64, 49))
	require.NoError(t, err)

	poly := testutil.Square(0, 0, 6)
	poly = append(poly, orb.Ring{{2, 2}, {2, 4}, {4, 4}, {4, 2}, {2, 2}})

	m := MaskRegion(g, poly)
	assert.False(t, m.Inside[g.Index(3, 3)], "hole interior is outside")
	assert.False(t, m.Inside[g.Index(2, 3)], "hole boundary is outside")
	assert.True(t, m.Inside[g.Index(1, 1)])
	assert.Equal(t, 49-9, m.Count())
}

func TestMaskRegion_EmptyPolygon(t *testing.T) {
	g, err := surface.NewGrid(0, 0, 1, 2, 2, make([]float64, 4))
	require.NoError(t, err)
	m := MaskRegion(g, nil)
	assert.Len(t, m.Inside, 4)
	assert.Equal(t, 0, m.Count())
}

func TestBaseHeight_Flat(t *testing.T) {
	const elevation = 12.5
	g := mustGrid(t, testutil.Flat(10, 0.25, elevation, 1), 0.5, surface.NearestNeighbour)
	idx := NewBoundaryIndex(g)

	poly := testutil.Square(2, 2, 5)
	base, err := BaseHeight(idx, poly[0])
	require.NoError(t, err)
	assert.InDelta(t, elevation, base, 1e-9)

	m := MaskRegion(g, poly)
	assert.InDelta(t, 0, Volume(base, m.Z, g.GSD), 1e-9)
}

func TestBaseHeight_UsesClosingVertex(t *testing.T) {
	z := []float64{
		0, 0, 10,
		0, 0, 0,
		0, 0, 0,
	}
	g, err := surface.NewGrid(0, 0, 1, 3, 3, z)
	require.NoError(t, err)
	idx := NewBoundaryIndex(g)

	// The first (and closing) vertex sits on the z=10 cell.
	ring := orb.Ring{{2, 0}, {2, 2}, {0, 2}, {2, 0}}
	base, err := BaseHeight(idx, ring)
	require.NoError(t, err)
	assert.InDelta(t, 20.0/4, base, 1e-12)
}

func TestBaseHeight_SkipsNoData(t *testing.T) {
	nan := math.NaN()
	g, err := surface.NewGrid(0, 0, 1, 2, 2, []float64{nan, nan, nan, 4})
	require.NoError(t, err)

	base, err := BaseHeight(NewBoundaryIndex(g), orb.Ring{{0, 0}, {1, 0}, {0, 1}, {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, 4.0, base)
}

func TestBaseHeight_NoCoverage(t *testing.T) {
	nan := math.NaN()
	g, err := surface.NewGrid(0, 0, 1, 2, 1, []float64{nan, nan})
	require.NoError(t, err)

	_, err = BaseHeight(NewBoundaryIndex(g), orb.Ring{{0, 0}, {1, 0}, {0, 0}})
	assert.True(t, errors.Is(err, ErrNoGridCoverage))

	_, err = BaseHeight(nil, orb.Ring{{0, 0}})
	assert.True(t, errors.Is(err, ErrNoGridCoverage))
}

func TestPyramidVolume_NearestNeighbour(t *testing.T) {
	const base, height = 4.0, 6.0
	cloud := testutil.Pyramid(base, height, 20000, 42, 1)
	g := mustGrid(t, cloud, 0.1, surface.NearestNeighbour)

	poly := testutil.Square(-base/2, -base/2, base)
	b, err := BaseHeight(NewBoundaryIndex(g), poly[0])
	require.NoError(t, err)
	m := MaskRegion(g, poly)
	vol := Volume(b, m.Z, g.GSD)

	lo, hi, ok := g.ZRange()
	require.True(t, ok)
	want := testutil.PyramidVolume(base, height)
	require.Equal(t, 32.0, want)

	testutil.AssertWithin(t, "volume", vol, want, (hi-lo)*0.2)
	testutil.AssertWithin(t, "volume (10%)", vol, want, want*0.1)
}

func TestPyramidVolume_ConvergesWithGSD(t *testing.T) {
	const base, height = 4.0, 6.0
	cloud := testutil.Pyramid(base, height, 20000, 42, 1)
	poly := testutil.Square(-base/2, -base/2, base)
	want := testutil.PyramidVolume(base, height)

	errAt := func(gsd float64) float64 {
		g := mustGrid(t, cloud, gsd, surface.TIN)
		b, err := BaseHeight(NewBoundaryIndex(g), poly[0])
		require.NoError(t, err)
		return math.Abs(Volume(b, MaskRegion(g, poly).Z, gsd) - want)
	}
	coarse, fine := errAt(0.8), errAt(0.1)
	assert.Less(t, fine, coarse)
	assert.Less(t, fine, want*0.05)
}

func TestArea3D_Pyramid(t *testing.T) {
	const base, height = 4.0, 6.0
	a, err := Area3D(testutil.Pyramid(base, height, 20000, 42, 1))
	require.NoError(t, err)
	want := testutil.PyramidLateralArea(base, height)
	testutil.AssertWithin(t, "area3d", a, want, want*0.05)
}

func TestArea3D_FlatSquare(t *testing.T) {
	a, err := Area3D(testutil.Flat(3, 0.5, 4, 1))
	require.NoError(t, err)
	assert.InDelta(t, 9.0, a, 1e-9)
}

func TestArea3D_Errors(t *testing.T) {
	_, err := Area3D(nil)
	assert.True(t, errors.Is(err, ErrInsufficientPoints))

	dup := pointcloud.Cloud{{X: 1, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 5}, {X: 2, Y: 2}}
	_, err = Area3D(dup)
	assert.True(t, errors.Is(err, ErrInsufficientPoints))

	line := pointcloud.Cloud{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	_, err = Area3D(line)
	assert.True(t, errors.Is(err, ErrDegenerateGeometry))
}

func TestHeron(t *testing.T) {
	assert.InDelta(t, 6.0, heron(3, 4, 5), 1e-12)
	assert.Equal(t, 0.0, heron(1, 2, 3), "degenerate triangle")
	assert.Equal(t, 0.0, heron(1, 1, 2.0000001), "negative radicand clamps to zero")
	assert.Equal(t, 0.0, heron(math.NaN(), 1, 1))
}

func TestArea25D(t *testing.T) {
	// z = x on a 3x3 lattice; each unit square has area sqrt(2).
	z := []float64{
		0, 1, 2,
		0, 1, 2,
		0, 1, 2,
	}
	g, err := surface.NewGrid(0, 0, 1, 3, 3, z)
	require.NoError(t, err)

	a, err := Area25D(g, MaskRegion(g, testutil.Square(0, 0, 2)))
	require.NoError(t, err)
	assert.InDelta(t, 4*math.Sqrt2, a, 1e-12)

	_, err = Area25D(g, MaskRegion(g, testutil.Square(10, 10, 1)))
	assert.True(t, errors.Is(err, ErrInsufficientPoints))
}

func TestCoverage(t *testing.T) {
	// Literal mode divides the subset count by itself: any non-empty subset
	// reports the full polygon area regardless of how many points it holds.
	assert.Equal(t, 100.0, Coverage(1, 1000, 100, CoverageLiteral))
	assert.Equal(t, 100.0, Coverage(537, 1000, 100, CoverageLiteral))
	assert.Equal(t, 0.0, Coverage(0, 1000, 100, CoverageLiteral))

	assert.Equal(t, 25.0, Coverage(250, 1000, 100, CoverageCloudFraction))
	assert.Equal(t, 0.0, Coverage(0, 1000, 100, CoverageCloudFraction))
	assert.Equal(t, 0.0, Coverage(5, 0, 100, CoverageCloudFraction))
}

func TestParseCoverageMode(t *testing.T) {
	m, err := ParseCoverageMode("cloud_fraction")
	require.NoError(t, err)
	assert.Equal(t, CoverageCloudFraction, m)

	m, err = ParseCoverageMode("")
	require.NoError(t, err)
	assert.Equal(t, CoverageLiteral, m)
	assert.Equal(t, "literal", m.String())

	_, err = ParseCoverageMode("density")
	assert.Error(t, err)
}
