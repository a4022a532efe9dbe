package report

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/volumetrics/internal/fsutil"
	"github.com/banshee-data/volumetrics/internal/monitoring"
	"github.com/banshee-data/volumetrics/internal/stats"
	"github.com/banshee-data/volumetrics/internal/surface"
	"github.com/banshee-data/volumetrics/internal/testutil"
)

func init() {
	monitoring.SetLogger(nil)
}

func slopeGrid(t *testing.T) *surface.Grid {
	t.Helper()
	const n = 12
	z := make([]float64, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			z[r*n+c] = float64(r + c)
		}
	}
	// a hole in the data
	z[5*n+5] = math.NaN()
	g, err := surface.NewGrid(0, 0, 0.5, n, n, z)
	require.NoError(t, err)
	return g
}

func TestGridXYZ(t *testing.T) {
	g := slopeGrid(t)
	a := gridXYZ{g}

	c, r := a.Dims()
	assert.Equal(t, 12, c)
	assert.Equal(t, 12, r)
	assert.Equal(t, 1.5, a.X(3))
	assert.Equal(t, 2.0, a.Y(4))
	assert.Equal(t, 7.0, a.Z(3, 4))
	assert.True(t, math.IsNaN(a.Z(5, 5)))
}

func TestRenderSurface_PNG(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	regions := []stats.Region{
		{ID: 1, Polygon: testutil.Square(1, 1, 2)},
		{ID: 2, Polygon: nil},
	}

	require.NoError(t, RenderSurface(fsys, "plots/surface.png", slopeGrid(t), regions))

	data, err := fsys.ReadFile("plots/surface.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")), "missing PNG signature")
	assert.True(t, fsys.Exists("plots"))
}

func TestRenderSurface_SVG(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, RenderSurface(fsys, "surface.SVG", slopeGrid(t), nil))

	data, err := fsys.ReadFile("surface.SVG")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRenderSurface_FlatGrid(t *testing.T) {
	g, err := surface.NewGrid(0, 0, 1, 3, 3, []float64{2, 2, 2, 2, 2, 2, 2, 2, 2})
	require.NoError(t, err)

	fsys := fsutil.NewMemoryFileSystem()
	assert.NoError(t, RenderSurface(fsys, "flat.png", g, nil))
	assert.True(t, fsys.Exists("flat.png"))
}

func TestRenderSurface_Errors(t *testing.T) {
	nan := math.NaN()
	empty, err := surface.NewGrid(0, 0, 1, 2, 1, []float64{nan, nan})
	require.NoError(t, err)

	tests := []struct {
		name    string
		grid    *surface.Grid
		path    string
		wantErr error
	}{
		{"nil grid", nil, "a.png", surface.ErrNoGridCoverage},
		{"no finite cells", empty, "a.png", surface.ErrNoGridCoverage},
		{"no extension", slopeGrid(t), "surface", nil},
		{"unknown format", slopeGrid(t), "surface.bmp", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fsutil.NewMemoryFileSystem()
			err := RenderSurface(fsys, tt.path, tt.grid, nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			assert.Empty(t, fsys.Files(""))
		})
	}
}

func TestRenderSummary(t *testing.T) {
	nan := math.NaN()
	results := []stats.Result{
		{ID: 4, Volume: 12.5, Area3D: 30, Area25D: 28, Coverage: 25, BaseHeight: 0.2},
		{ID: 9, Volume: nan, Area3D: 3, Area25D: nan, Coverage: 0, BaseHeight: nan,
			Failures: []stats.Failure{{Metric: stats.MetricVolume, Err: stats.ErrNoGridCoverage}}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, results))

	html := buf.String()
	assert.True(t, strings.Contains(html, "<html"), "not an HTML page")
	assert.Contains(t, html, "Region statistics")
	assert.Contains(t, html, "region 4")
	assert.Contains(t, html, "region 9")
	assert.Contains(t, html, "regions=2 failed=1")
}

func TestRenderSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSummary(&buf, nil))
	assert.Contains(t, buf.String(), "regions=0 failed=0")
}

func TestBarValue(t *testing.T) {
	assert.Equal(t, missing, barValue(math.NaN()).Value)
	assert.Equal(t, missing, barValue(math.Inf(1)).Value)
	assert.Equal(t, 1.5, barValue(1.5).Value)
}
