package stats

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/volumetrics/internal/spatial"
	"github.com/banshee-data/volumetrics/internal/surface"
)

// BoundaryIndex answers nearest-cell queries over the grid cells holding data.
// Build it once per grid and share it between regions.
type BoundaryIndex struct {
	nn *spatial.NearestIndex
	z  []float64
}

// NewBoundaryIndex indexes every finite cell of g.
func NewBoundaryIndex(g *surface.Grid) *BoundaryIndex {
	n := g.ValidCells()
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	zs := make([]float64, 0, n)
	for i, z := range g.Z {
		if math.IsNaN(z) {
			continue
		}
		xs = append(xs, g.X[i])
		ys = append(ys, g.Y[i])
		zs = append(zs, z)
	}
	return &BoundaryIndex{nn: spatial.NewNearestIndex(xs, ys), z: zs}
}

// BaseHeight returns the mean height of the cells nearest to each vertex of
// ring. The closing vertex is counted like any other.
func BaseHeight(idx *BoundaryIndex, ring orb.Ring) (float64, error) {
	if idx == nil || idx.nn.Len() == 0 {
		return math.NaN(), fmt.Errorf("%w: surface has no cells with data", ErrNoGridCoverage)
	}
	if len(ring) == 0 {
		return math.NaN(), fmt.Errorf("%w: empty boundary ring", ErrNoGridCoverage)
	}

	heights := make([]float64, 0, len(ring))
	for _, v := range ring {
		j, _ := idx.nn.Nearest(v[0], v[1])
		if j < 0 {
			continue
		}
		heights = append(heights, idx.z[j])
	}
	if len(heights) == 0 {
		return math.NaN(), fmt.Errorf("%w: no boundary vertex matched a cell", ErrNoGridCoverage)
	}
	return stat.Mean(heights, nil), nil
}
