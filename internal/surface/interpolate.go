package surface

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/volumetrics/internal/spatial"
)

// Interpolator evaluates heights at query positions from scattered samples.
// Implementations write one value per query into out.
type Interpolator interface {
	Interpolate(xs, ys, zs, qx, qy, out []float64) error
}

type nearestInterpolator struct{}

func (nearestInterpolator) Interpolate(xs, ys, zs, qx, qy, out []float64) error {
	idx := spatial.NewNearestIndex(xs, ys)
	return parallelFill(len(out), func(i int) {
		j, _ := idx.Nearest(qx[i], qy[i])
		out[i] = zs[j]
	})
}

type tinInterpolator struct{}

func (tinInterpolator) Interpolate(xs, ys, zs, qx, qy, out []float64) error {
	tri, err := spatial.Triangulate(xs, ys)
	if err != nil {
		return fmt.Errorf("triangulate surface: %w", err)
	}
	ti := spatial.NewTriangleIndex(tri)
	return parallelFill(len(out), func(i int) {
		out[i] = ti.Interpolate(zs, qx[i], qy[i])
	})
}

// fillChunk is the number of cells handled by one goroutine.
const fillChunk = 4096

// parallelFill calls fn(i) for every i in [0, n) across CPU-bound workers.
func parallelFill(n int, fn func(i int)) error {
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for start := 0; start < n; start += fillChunk {
		start := start
		end := min(start+fillChunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i)
			}
			return nil
		})
	}
	return g.Wait()
}
