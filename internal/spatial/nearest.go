package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// site is a planar position carrying the index of the source point it came from.
type site struct {
	X, Y  float64
	Index int
}

// Compare satisfies kdtree.Comparable. Dimension 0 is X, 1 is Y.
func (s site) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(site)
	switch d {
	case 0:
		return s.X - q.X
	case 1:
		return s.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

// Dims satisfies kdtree.Comparable.
func (s site) Dims() int { return 2 }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (s site) Distance(c kdtree.Comparable) float64 {
	q := c.(site)
	dx := s.X - q.X
	dy := s.Y - q.Y
	return dx*dx + dy*dy
}

type sites []site

func (p sites) Index(i int) kdtree.Comparable         { return p[i] }
func (p sites) Len() int                              { return len(p) }
func (p sites) Pivot(d kdtree.Dim) int                { return sitePlane{sites: p, Dim: d}.Pivot() }
func (p sites) Slice(start, end int) kdtree.Interface { return p[start:end] }

// sitePlane lets sites be partitioned along one dimension.
type sitePlane struct {
	kdtree.Dim
	sites
}

func (p sitePlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.sites[i].X < p.sites[j].X
	case 1:
		return p.sites[i].Y < p.sites[j].Y
	default:
		panic("illegal dimension")
	}
}
func (p sitePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfRandoms(p, 100)) }
func (p sitePlane) Slice(start, end int) kdtree.SortSlicer {
	p.sites = p.sites[start:end]
	return p
}
func (p sitePlane) Swap(i, j int) { p.sites[i], p.sites[j] = p.sites[j], p.sites[i] }

// NearestIndex answers k=1 nearest-neighbour queries over planar positions.
type NearestIndex struct {
	tree *kdtree.Tree
	n    int
}

// NewNearestIndex builds a k-d tree over (xs[i], ys[i]). xs and ys must have
// equal length. Input slices are not retained.
func NewNearestIndex(xs, ys []float64) *NearestIndex {
	pts := make(sites, len(xs))
	for i := range xs {
		pts[i] = site{X: xs[i], Y: ys[i], Index: i}
	}
	// kdtree.New reorders pts in place; the Index field keeps the mapping.
	return &NearestIndex{tree: kdtree.New(pts, false), n: len(pts)}
}

// Len returns the number of indexed positions.
func (ni *NearestIndex) Len() int { return ni.n }

// Nearest returns the index of the position closest to (x, y) and its
// Euclidean distance. An empty index returns -1 and +Inf.
func (ni *NearestIndex) Nearest(x, y float64) (int, float64) {
	if ni.n == 0 {
		return -1, math.Inf(1)
	}
	c, d2 := ni.tree.Nearest(site{X: x, Y: y})
	if c == nil {
		return -1, math.Inf(1)
	}
	return c.(site).Index, math.Sqrt(d2)
}
