package stats

import "math"

// Volume integrates the height above base over the given cell heights as a
// Riemann sum with cell area gsd². Cells below base contribute nothing and
// NaN cells are skipped.
func Volume(base float64, z []float64, gsd float64) float64 {
	cell := gsd * gsd
	v := 0.0
	for _, h := range z {
		if math.IsNaN(h) {
			continue
		}
		if d := h - base; d > 0 {
			v += d * cell
		}
	}
	return v
}
