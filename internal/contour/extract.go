package contour

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/volumetrics/internal/monitoring"
	"github.com/banshee-data/volumetrics/internal/pointcloud"
	"github.com/banshee-data/volumetrics/internal/spatial"
)

// DefaultAlpha is the circumradius threshold, in coordinate units, used when
// none is configured.
const DefaultAlpha = 10.0

// sliverTolerance rejects triangles whose area is negligible relative to
// their longest edge.
const sliverTolerance = 1e-12

var (
	errMultiPart = errors.New("alpha shape has more than one part")
	errEmpty     = errors.New("alpha shape is empty")
	errPinched   = errors.New("alpha shape boundary touches itself")
	errOpenRing  = errors.New("alpha shape boundary is not closed")
)

// Shape is the outline of one point group.
type Shape struct {
	GroupID int
	Polygon orb.Polygon // CCW shell, then CW holes
}

// Extractor computes alpha shapes per group.
type Extractor struct {
	Alpha   float64 // <= 0 keeps every triangle (convex hull)
	Workers int     // <= 0 means runtime.NumCPU()
}

// Extract returns one Shape per qualifying group, ordered by group id.
// Background points are ignored.
func (e Extractor) Extract(ctx context.Context, cloud pointcloud.Cloud, index pointcloud.GroupIndex) ([]Shape, error) {
	if index == nil {
		index = pointcloud.GroupBy(cloud)
	}
	ids := make([]int, 0, len(index))
	for _, id := range index.IDs() {
		if id != pointcloud.BackgroundGroup {
			ids = append(ids, id)
		}
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	slots := make([]*Shape, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		i, id := i, id
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			poly, err := AlphaShape(index.Subset(cloud, id), e.Alpha)
			if err != nil {
				monitoring.Diagf("contour: group %d dropped: %v", id, err)
				return nil
			}
			slots[i] = &Shape{GroupID: id, Polygon: poly}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shapes := make([]Shape, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			shapes = append(shapes, *s)
		}
	}
	monitoring.Logf("contour: %d of %d groups produced a shape (alpha=%g)", len(shapes), len(ids), e.Alpha)
	return shapes, nil
}

// AlphaShape computes the concave hull of points. It fails unless the
// result is exactly one polygon.
func AlphaShape(points pointcloud.Cloud, alpha float64) (orb.Polygon, error) {
	if n := points.DistinctXY(); n < 3 {
		return nil, fmt.Errorf("%w: %d distinct positions", spatial.ErrInsufficientPoints, n)
	}
	xs, ys, _ := points.XYZ()
	tri, err := spatial.Triangulate(xs, ys)
	if err != nil {
		return nil, err
	}

	kept := make([]int, 0, len(tri.Triangles))
	for i := range tri.Triangles {
		if isSliver(tri, i) {
			continue
		}
		if alpha > 0 && tri.Circumradius(i) > alpha {
			continue
		}
		kept = append(kept, i)
	}
	if len(kept) == 0 {
		return nil, errEmpty
	}

	edges := make(map[edge][]int, 3*len(kept))
	for _, i := range kept {
		t := tri.Triangles[i]
		for k := 0; k < 3; k++ {
			e := newEdge(t[k], t[(k+1)%3])
			edges[e] = append(edges[e], i)
		}
	}
	if components(kept, tri, edges) != 1 {
		return nil, errMultiPart
	}

	rings, err := boundaryRings(kept, tri, edges)
	if err != nil {
		return nil, err
	}
	return assemble(rings), nil
}

func isSliver(tri *spatial.Triangulation, i int) bool {
	t := tri.Triangles[i]
	longest := 0.0
	for k := 0; k < 3; k++ {
		a, b := t[k], t[(k+1)%3]
		longest = math.Max(longest, math.Hypot(tri.X[b]-tri.X[a], tri.Y[b]-tri.Y[a]))
	}
	return tri.Area(i) <= sliverTolerance*longest*longest
}

// edge is an undirected triangulation edge with From < To.
type edge struct{ From, To int }

func newEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// components counts edge-connected groups of kept triangles.
func components(kept []int, tri *spatial.Triangulation, edges map[edge][]int) int {
	seen := make(map[int]bool, len(kept))
	n := 0
	for _, start := range kept {
		if seen[start] {
			continue
		}
		n++
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			t := tri.Triangles[cur]
			for k := 0; k < 3; k++ {
				for _, nb := range edges[newEdge(t[k], t[(k+1)%3])] {
					if !seen[nb] {
						seen[nb] = true
						stack = append(stack, nb)
					}
				}
			}
		}
	}
	return n
}

// boundaryRings walks the directed boundary edges of the kept triangles.
// Triangles are CCW, so the shell comes out CCW and holes CW.
func boundaryRings(kept []int, tri *spatial.Triangulation, edges map[edge][]int) ([]orb.Ring, error) {
	next := make(map[int]int)
	for _, i := range kept {
		t := tri.Triangles[i]
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if len(edges[newEdge(a, b)]) != 1 {
				continue
			}
			if _, dup := next[a]; dup {
				return nil, errPinched
			}
			next[a] = b
		}
	}

	starts := make([]int, 0, len(next))
	for v := range next {
		starts = append(starts, v)
	}
	sort.Ints(starts)

	var rings []orb.Ring
	visited := make(map[int]bool, len(next))
	for _, start := range starts {
		if visited[start] {
			continue
		}
		ring := orb.Ring{{tri.X[start], tri.Y[start]}}
		visited[start] = true
		cur := start
		for steps := 0; ; steps++ {
			nxt, ok := next[cur]
			if !ok || steps > len(next) {
				return nil, errOpenRing
			}
			ring = append(ring, orb.Point{tri.X[nxt], tri.Y[nxt]})
			if nxt == start {
				break
			}
			if visited[nxt] {
				return nil, errPinched
			}
			visited[nxt] = true
			cur = nxt
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

// assemble puts the ring with the largest area first as the shell.
func assemble(rings []orb.Ring) orb.Polygon {
	shell := 0
	best := 0.0
	for i, r := range rings {
		if a := math.Abs(planar.Area(r)); a > best {
			best, shell = a, i
		}
	}
	poly := orb.Polygon{rings[shell]}
	for i, r := range rings {
		if i != shell {
			poly = append(poly, r)
		}
	}
	return poly
}
