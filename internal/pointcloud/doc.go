// Package pointcloud owns the in-memory point cloud model used by the
// surface, statistics and contour packages.
//
// Key types: Point, Cloud, GroupIndex.
//
// A point's GroupID links it to at most one region polygon. GroupID 0 is
// the background class and never forms a contour.
package pointcloud
