package geo

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/banshee-data/volumetrics/internal/stats"
)

// Overlap names two regions whose polygons intersect. Touching boundaries
// count, since boundary cells belong to both masks.
type Overlap struct {
	A, B int // region ids, A listed first in the input
}

// regionEntry adapts a region's bound to rtreego.Spatial.
type regionEntry struct {
	idx  int
	rect rtreego.Rect
}

func (e *regionEntry) Bounds() rtreego.Rect { return e.rect }

// FindOverlaps reports every pair of regions whose polygons intersect, in
// input order. Regions without an outer ring are ignored.
func FindOverlaps(regions []stats.Region) []Overlap {
	var (
		objs    []rtreego.Spatial
		entries = make([]*regionEntry, len(regions))
	)
	for i, r := range regions {
		if len(r.Polygon) == 0 || len(r.Polygon[0]) == 0 {
			continue
		}
		b := r.Polygon.Bound()
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{b.Min[0], b.Min[1]},
			rtreego.Point{b.Max[0], b.Max[1]},
		)
		if err != nil {
			continue
		}
		entries[i] = &regionEntry{idx: i, rect: rect}
		objs = append(objs, entries[i])
	}
	if len(objs) < 2 {
		return nil
	}

	tree := rtreego.NewTree(2, 2, 16, objs...)

	var out []Overlap
	for i, e := range entries {
		if e == nil {
			continue
		}
		b := regions[i].Polygon.Bound()
		// Pad the query so bounds that only touch are still returned.
		tol := 1e-9 * (1 + math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]))
		query, err := rtreego.NewRectFromPoints(
			rtreego.Point{b.Min[0] - tol, b.Min[1] - tol},
			rtreego.Point{b.Max[0] + tol, b.Max[1] + tol},
		)
		if err != nil {
			continue
		}

		var hits []int
		for _, obj := range tree.SearchIntersect(query) {
			j := obj.(*regionEntry).idx
			if j > i && polygonsIntersect(regions[i].Polygon, regions[j].Polygon) {
				hits = append(hits, j)
			}
		}
		sort.Ints(hits)
		for _, j := range hits {
			out = append(out, Overlap{A: regions[i].ID, B: regions[j].ID})
		}
	}
	return out
}

func polygonsIntersect(a, b orb.Polygon) bool {
	for _, p := range b[0] {
		if planar.PolygonContains(a, p) {
			return true
		}
	}
	for _, p := range a[0] {
		if planar.PolygonContains(b, p) {
			return true
		}
	}
	for _, ra := range a {
		for _, rb := range b {
			if ringsCross(ra, rb) {
				return true
			}
		}
	}
	return false
}

// ringsCross reports a proper crossing between any edge of r and any edge
// of s. Touching and collinear contacts are left to the vertex tests.
func ringsCross(r, s orb.Ring) bool {
	for i := 0; i+1 < len(r); i++ {
		for j := 0; j+1 < len(s); j++ {
			if segmentsCross(r[i], r[i+1], s[j], s[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(p1, p2, q1, q2 orb.Point) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}
