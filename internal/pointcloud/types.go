package pointcloud

import (
	"errors"
	"math"
)

// BackgroundGroup is the group id of unclassified points.
const BackgroundGroup = 0

// ErrEmptyPointCloud is returned when an operation needs at least one point.
var ErrEmptyPointCloud = errors.New("empty point cloud")

// Point is one classified return in a projected coordinate system.
type Point struct {
	X, Y, Z float64 // Position (metres)
	GroupID int     // Region id; 0 is background
}

// Cloud is an ordered collection of points.
type Cloud []Point

// Bounds is an axis-aligned 3D extent.
type Bounds struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// Bounds returns the extent of the cloud. An empty cloud yields ErrEmptyPointCloud.
func (c Cloud) Bounds() (Bounds, error) {
	if len(c) == 0 {
		return Bounds{}, ErrEmptyPointCloud
	}
	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1), MinZ: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1), MaxZ: math.Inf(-1),
	}
	for _, p := range c {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MinZ = math.Min(b.MinZ, p.Z)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
		b.MaxZ = math.Max(b.MaxZ, p.Z)
	}
	return b, nil
}

// XYZ splits the cloud into coordinate columns.
func (c Cloud) XYZ() (xs, ys, zs []float64) {
	xs = make([]float64, len(c))
	ys = make([]float64, len(c))
	zs = make([]float64, len(c))
	for i, p := range c {
		xs[i], ys[i], zs[i] = p.X, p.Y, p.Z
	}
	return xs, ys, zs
}

// DistinctXY counts points with distinct planimetric positions.
// Exact float equality is used, matching how duplicates are detected upstream.
func (c Cloud) DistinctXY() int {
	seen := make(map[[2]float64]struct{}, len(c))
	for _, p := range c {
		seen[[2]float64{p.X, p.Y}] = struct{}{}
	}
	return len(seen)
}
