package stats

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/volumetrics/internal/monitoring"
	"github.com/banshee-data/volumetrics/internal/pointcloud"
	"github.com/banshee-data/volumetrics/internal/surface"
)

// Metric names used in Failure records.
const (
	MetricBaseHeight = "base_height"
	MetricVolume     = "volume"
	MetricArea3D     = "area3d"
	MetricArea25D    = "area25d"
)

// Region is a candidate boundary polygon whose ID matches a point group.
type Region struct {
	ID      int
	Polygon orb.Polygon // outer ring first, then holes
}

// Failure records why one metric of a region is NaN.
type Failure struct {
	Metric string
	Err    error
}

func (f Failure) Error() string { return f.Metric + ": " + f.Err.Error() }

func (f Failure) Unwrap() error { return f.Err }

// Result holds the statistics of one region. Metrics that could not be
// computed are NaN and have a matching entry in Failures.
type Result struct {
	ID          int
	Volume      float64
	Area3D      float64
	Area25D     float64
	Coverage    float64
	BaseHeight  float64
	CellsInside int
	Points      int
	Failures    []Failure
}

// Failed reports whether metric has a recorded failure.
func (r Result) Failed(metric string) bool {
	for _, f := range r.Failures {
		if f.Metric == metric {
			return true
		}
	}
	return false
}

// Options tunes an Engine run.
type Options struct {
	Workers  int // <= 0 means runtime.NumCPU()
	Coverage CoverageMode
}

// Engine computes region statistics against one grid and one cloud. All
// fields are read-only while Run executes.
type Engine struct {
	Grid    *surface.Grid
	Cloud   pointcloud.Cloud
	Index   pointcloud.GroupIndex
	Options Options
}

// Run computes one Result per region, in region order. Regions are processed
// concurrently; each writes only its own slot. Cancelling ctx stops
// scheduling further regions and Run returns ctx.Err().
func (e *Engine) Run(ctx context.Context, regions []Region) ([]Result, error) {
	if e.Grid == nil {
		return nil, fmt.Errorf("%w: engine has no grid", ErrNoGridCoverage)
	}
	if len(e.Cloud) == 0 {
		return nil, ErrEmptyPointCloud
	}
	index := e.Index
	if index == nil {
		index = pointcloud.GroupBy(e.Cloud)
	}

	workers := e.Options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	bidx := NewBoundaryIndex(e.Grid)
	results := make([]Result, len(regions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range regions {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.analyze(regions[i], index, bidx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	monitoring.Logf("stats: %s", Summary(results))
	return results, nil
}

func (e *Engine) analyze(region Region, index pointcloud.GroupIndex, bidx *BoundaryIndex) Result {
	res := Result{
		ID:         region.ID,
		Volume:     math.NaN(),
		Area3D:     math.NaN(),
		Area25D:    math.NaN(),
		BaseHeight: math.NaN(),
		Points:     index.Count(region.ID),
	}
	fail := func(metric string, err error) {
		res.Failures = append(res.Failures, Failure{Metric: metric, Err: err})
		monitoring.Diagf("region %d: %s failed: %v", region.ID, metric, err)
	}

	if len(region.Polygon) == 0 || len(region.Polygon[0]) == 0 {
		err := fmt.Errorf("%w: region has no outer ring", ErrDegenerateGeometry)
		for _, m := range []string{MetricBaseHeight, MetricVolume, MetricArea25D} {
			fail(m, err)
		}
	} else {
		mask := MaskRegion(e.Grid, region.Polygon)
		res.CellsInside = mask.Count()

		var flat error
		if planar.Area(region.Polygon[0]) == 0 {
			flat = fmt.Errorf("%w: region outer ring has zero area", ErrDegenerateGeometry)
		}

		base, err := BaseHeight(bidx, region.Polygon[0])
		switch {
		case err != nil:
			fail(MetricBaseHeight, err)
			fail(MetricVolume, fmt.Errorf("base height unavailable: %w", err))
		case flat != nil:
			res.BaseHeight = base
			fail(MetricVolume, flat)
		default:
			res.BaseHeight = base
			res.Volume = Volume(base, mask.Z, e.Grid.GSD)
		}

		if flat != nil {
			fail(MetricArea25D, flat)
		} else if a, err := Area25D(e.Grid, mask); err != nil {
			fail(MetricArea25D, err)
		} else {
			res.Area25D = a
		}
	}

	if a, err := Area3D(index.Subset(e.Cloud, region.ID)); err != nil {
		fail(MetricArea3D, err)
	} else {
		res.Area3D = a
	}

	res.Coverage = Coverage(res.Points, len(e.Cloud), planar.Area(region.Polygon), e.Options.Coverage)
	return res
}

// RunSummary aggregates a batch of results for logging.
type RunSummary struct {
	Regions       int
	Failed        int // regions with at least one failure
	TotalVolume   float64
	TotalArea3D   float64
	TotalCoverage float64
	FailuresBy    map[string]int
}

// Summary totals the finite metrics of results.
func Summary(results []Result) RunSummary {
	s := RunSummary{Regions: len(results), FailuresBy: make(map[string]int)}
	for _, r := range results {
		if len(r.Failures) > 0 {
			s.Failed++
		}
		for _, f := range r.Failures {
			s.FailuresBy[f.Metric]++
		}
		s.TotalVolume += finiteOrZero(r.Volume)
		s.TotalArea3D += finiteOrZero(r.Area3D)
		s.TotalCoverage += finiteOrZero(r.Coverage)
	}
	return s
}

func (s RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d regions (%d with failures), volume=%.3f area3d=%.3f coverage=%.3f",
		s.Regions, s.Failed, s.TotalVolume, s.TotalArea3D, s.TotalCoverage)
	if len(s.FailuresBy) > 0 {
		metrics := make([]string, 0, len(s.FailuresBy))
		for m := range s.FailuresBy {
			metrics = append(metrics, m)
		}
		sort.Strings(metrics)
		for _, m := range metrics {
			fmt.Fprintf(&b, " %s_failures=%d", m, s.FailuresBy[m])
		}
	}
	return b.String()
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
