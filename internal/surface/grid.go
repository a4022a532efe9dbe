package surface

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidGSD is returned for a non-positive or non-finite ground sampling distance.
	ErrInvalidGSD = errors.New("invalid ground sampling distance")

	// ErrNoGridCoverage is returned when a lattice or a query has no usable cells.
	ErrNoGridCoverage = errors.New("no grid coverage")
)

// Grid is an immutable height field on a regular lattice.
type Grid struct {
	Cols, Rows int
	GSD        float64
	OriginX    float64 // x of column 0
	OriginY    float64 // y of row 0

	// Row-major, len Rows*Cols. Z may hold NaN for cells without data.
	X, Y, Z []float64
}

// NewGrid assembles a grid from its lattice definition and heights. z must
// hold exactly cols*rows values in row-major order.
func NewGrid(originX, originY, gsd float64, cols, rows int, z []float64) (*Grid, error) {
	if gsd <= 0 || math.IsNaN(gsd) || math.IsInf(gsd, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGSD, gsd)
	}
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d lattice", ErrNoGridCoverage, cols, rows)
	}
	if len(z) != cols*rows {
		return nil, fmt.Errorf("grid shape mismatch: %d heights for %dx%d lattice", len(z), cols, rows)
	}

	g := &Grid{
		Cols:    cols,
		Rows:    rows,
		GSD:     gsd,
		OriginX: originX,
		OriginY: originY,
		X:       make([]float64, len(z)),
		Y:       make([]float64, len(z)),
		Z:       z,
	}
	for r := 0; r < rows; r++ {
		y := originY + float64(r)*gsd
		for c := 0; c < cols; c++ {
			i := r*cols + c
			g.X[i] = originX + float64(c)*gsd
			g.Y[i] = y
		}
	}
	return g, nil
}

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.Z) }

// Index returns the flat index of cell (r, c).
func (g *Grid) Index(r, c int) int { return r*g.Cols + c }

// RowCol is the inverse of Index.
func (g *Grid) RowCol(i int) (r, c int) { return i / g.Cols, i % g.Cols }

// At returns the height of cell (r, c).
func (g *Grid) At(r, c int) float64 { return g.Z[g.Index(r, c)] }

// CellArea is the planimetric area represented by one cell.
func (g *Grid) CellArea() float64 { return g.GSD * g.GSD }

// ValidCells counts cells with a finite height.
func (g *Grid) ValidCells() int {
	n := 0
	for _, z := range g.Z {
		if !math.IsNaN(z) {
			n++
		}
	}
	return n
}

// ZRange returns the lowest and highest finite heights. ok is false when no
// cell holds data.
func (g *Grid) ZRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, z := range g.Z {
		if math.IsNaN(z) {
			continue
		}
		lo = math.Min(lo, z)
		hi = math.Max(hi, z)
		ok = true
	}
	return lo, hi, ok
}

// NearestCell returns the lattice cell closest to (x, y). Positions outside
// the lattice snap to the nearest edge cell.
func (g *Grid) NearestCell(x, y float64) (r, c int) {
	c = clampInt(int(math.Round((x-g.OriginX)/g.GSD)), 0, g.Cols-1)
	r = clampInt(int(math.Round((y-g.OriginY)/g.GSD)), 0, g.Rows-1)
	return r, c
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// latticeSize returns the number of samples in [lo, hi) at step gsd.
func latticeSize(lo, hi, gsd float64) int {
	if !(hi > lo) {
		return 0
	}
	n := int(math.Ceil((hi - lo) / gsd))
	// Guard against rounding that would put the last sample on hi.
	for n > 0 && lo+float64(n-1)*gsd >= hi {
		n--
	}
	return n
}
