// Package testutil provides shared test utilities and fixtures.
//
// This package centralises synthetic point clouds and region shapes with
// known analytic properties so that surface, statistics and contour tests
// agree on the same inputs.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"

	"github.com/banshee-data/volumetrics/internal/pointcloud"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertWithin fails the test if got differs from want by more than tol.
func AssertWithin(t testing.TB, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v ± %v", name, got, want, tol)
	}
}

// PyramidVolume is the analytic volume of a square pyramid.
func PyramidVolume(base, height float64) float64 {
	return base * base * height / 3
}

// PyramidLateralArea is the analytic area of the four sloped faces.
func PyramidLateralArea(base, height float64) float64 {
	slant := math.Hypot(base/2, height)
	return 2 * base * slant
}

// Pyramid samples a square pyramid centred on the origin with the given base
// side and apex height. n interior points are drawn uniformly from a seeded
// source; the corners, apex and a dense perimeter are always present so the
// convex hull is exactly the base square.
func Pyramid(base, height float64, n int, seed int64, groupID int) pointcloud.Cloud {
	half := base / 2
	z := func(x, y float64) float64 {
		return height * (1 - math.Max(math.Abs(x), math.Abs(y))/half)
	}

	cloud := make(pointcloud.Cloud, 0, n+405)
	add := func(x, y float64) {
		cloud = append(cloud, pointcloud.Point{X: x, Y: y, Z: z(x, y), GroupID: groupID})
	}

	add(0, 0)
	const perSide = 100
	for i := 0; i < perSide; i++ {
		s := -half + base*float64(i)/perSide
		add(s, -half)
		add(half, s)
		add(-s, half)
		add(-half, -s)
	}

	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		add(rng.Float64()*base-half, rng.Float64()*base-half)
	}
	return cloud
}

// Flat samples a horizontal plane at elevation on a regular lattice covering
// [0, size]² with the given step.
func Flat(size, step, elevation float64, groupID int) pointcloud.Cloud {
	n := int(math.Round(size/step)) + 1
	cloud := make(pointcloud.Cloud, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cloud = append(cloud, pointcloud.Point{
				X: float64(i) * step, Y: float64(j) * step, Z: elevation, GroupID: groupID,
			})
		}
	}
	return cloud
}

// Square returns a counter-clockwise square polygon with lower-left corner
// (x, y).
func Square(x, y, side float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{x, y}, {x + side, y}, {x + side, y + side}, {x, y + side}, {x, y},
	}}
}
