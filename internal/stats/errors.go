package stats

import (
	"github.com/banshee-data/volumetrics/internal/pointcloud"
	"github.com/banshee-data/volumetrics/internal/spatial"
	"github.com/banshee-data/volumetrics/internal/surface"
)

// Error kinds surfaced by the statistics engine. They alias the sentinels of
// the packages that raise them so errors.Is works across package boundaries.
var (
	ErrEmptyPointCloud    = pointcloud.ErrEmptyPointCloud
	ErrInsufficientPoints = spatial.ErrInsufficientPoints
	ErrNoGridCoverage     = surface.ErrNoGridCoverage
	ErrDegenerateGeometry = spatial.ErrDegenerateGeometry
)
