// Package geo reads region polygons from GeoJSON and writes enriched
// results and contour shapes back out as GeoJSON feature collections
// tagged with a named CRS. FindOverlaps flags region pairs that would
// count the same grid cells twice.
package geo
