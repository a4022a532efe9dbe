// Package surface rasterises a point cloud into a regular height field.
//
// A Grid is built once per run from the full cloud and is read-only
// afterwards. Lattice coordinates follow a half-open range: along x the
// samples are min_x + i*gsd for every value strictly below max_x, and the
// same holds for y. Row r maps to y and column c to x; all per-cell slices
// are row-major.
//
// Two interpolation modes exist. NearestNeighbour copies the height of the
// closest source point. TIN interpolates linearly within a Delaunay
// triangulation and leaves cells outside the convex hull as NaN.
package surface
