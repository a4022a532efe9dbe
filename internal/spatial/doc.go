// Package spatial provides the planar query structures shared by the surface
// builder, the statistics engine and the contour extractor.
//
// Responsibilities: k=1 nearest-neighbour lookups over (x, y), Delaunay
// triangulation of scattered points, and point location within a
// triangulation.
// Key types: NearestIndex, Triangulation, TriangleIndex.
//
// All structures are immutable once built and safe for concurrent readers.
package spatial
