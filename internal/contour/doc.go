// Package contour extracts concave-hull outlines of point groups.
//
// An outline is an alpha shape: the union of the Delaunay triangles of a
// group whose circumradius does not exceed Alpha. Only groups whose union is
// a single polygon (one shell, optional holes, no pinch vertices) produce a
// Shape; everything else is dropped and reported on the diag stream.
package contour
