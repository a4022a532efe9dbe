package surface

import (
	"fmt"
	"math"

	"github.com/banshee-data/volumetrics/internal/monitoring"
	"github.com/banshee-data/volumetrics/internal/pointcloud"
)

// Build rasterises cloud at the given ground sampling distance.
func Build(cloud pointcloud.Cloud, gsd float64, mode Mode) (*Grid, error) {
	if len(cloud) == 0 {
		return nil, pointcloud.ErrEmptyPointCloud
	}
	if gsd <= 0 || math.IsNaN(gsd) || math.IsInf(gsd, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGSD, gsd)
	}
	interp, err := mode.Interpolator()
	if err != nil {
		return nil, err
	}

	b, err := cloud.Bounds()
	if err != nil {
		return nil, err
	}
	cols := latticeSize(b.MinX, b.MaxX, gsd)
	rows := latticeSize(b.MinY, b.MaxY, gsd)
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("%w: cloud extent %.3fx%.3f at gsd %v",
			ErrNoGridCoverage, b.MaxX-b.MinX, b.MaxY-b.MinY, gsd)
	}

	// Lattice coordinates first, heights filled by the strategy.
	g, err := NewGrid(b.MinX, b.MinY, gsd, cols, rows, make([]float64, cols*rows))
	if err != nil {
		return nil, err
	}
	xs, ys, zs := cloud.XYZ()
	if err := interp.Interpolate(xs, ys, zs, g.X, g.Y, g.Z); err != nil {
		return nil, err
	}
	if g.ValidCells() == 0 {
		return nil, fmt.Errorf("%w: every cell is outside the %s surface", ErrNoGridCoverage, mode)
	}

	monitoring.Logf("surface: %dx%d grid at gsd=%g (%s), %d/%d cells with data",
		cols, rows, gsd, mode, g.ValidCells(), g.Len())
	return g, nil
}
