// Package stats computes per-region statistics over a height-field grid.
//
// For every region the Engine masks the grid cells inside the polygon,
// estimates a base height from the boundary ring, integrates the volume above
// that base, measures the 3D surface area of the region's own points and
// derives a coverage figure. Regions are independent: a failing metric is
// recorded on its Result as NaN plus a Failure and the batch continues.
package stats
