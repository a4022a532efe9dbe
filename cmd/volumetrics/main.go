// Command volumetrics computes per-region volume, surface area and coverage
// from a classified point cloud and a set of boundary polygons, and extracts
// concave-hull contours for each point group.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/banshee-data/volumetrics/internal/config"
	"github.com/banshee-data/volumetrics/internal/contour"
	"github.com/banshee-data/volumetrics/internal/fsutil"
	"github.com/banshee-data/volumetrics/internal/geo"
	"github.com/banshee-data/volumetrics/internal/monitoring"
	"github.com/banshee-data/volumetrics/internal/pointcloud"
	"github.com/banshee-data/volumetrics/internal/report"
	"github.com/banshee-data/volumetrics/internal/stats"
	"github.com/banshee-data/volumetrics/internal/store"
	"github.com/banshee-data/volumetrics/internal/surface"
	"github.com/banshee-data/volumetrics/internal/version"
)

// Output file names written under -out.
const (
	regionsFile  = "regions.geojson"
	contoursFile = "contours.geojson"
)

// options is the parsed command line. Analysis parameters given on the
// command line override the config file.
type options struct {
	points     string
	polygons   string
	configPath string
	out        string
	dbPath     string
	plotPath   string
	reportPath string
	diag       bool
	version    bool

	overrides func(*config.AnalysisConfig)
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("volumetrics", flag.ContinueOnError)

	o := &options{}
	fs.StringVar(&o.points, "points", "", "Classified point cloud CSV (x,y,z,group_id)")
	fs.StringVar(&o.polygons, "polygons", "", "Boundary polygons GeoJSON")
	fs.StringVar(&o.configPath, "config", "", "Analysis config JSON (defaults when empty)")
	fs.StringVar(&o.out, "out", "out", "Output directory for GeoJSON results")
	fs.StringVar(&o.dbPath, "db", "", "SQLite database to record the run in (optional)")
	fs.StringVar(&o.plotPath, "plot", "", "Surface heat map image, format by extension (optional)")
	fs.StringVar(&o.reportPath, "report", "", "HTML summary chart (optional)")
	fs.BoolVar(&o.diag, "diag", false, "Log per-region and per-group diagnostics to stderr")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")

	gsd := fs.Float64("gsd", config.DefaultGSD, "Ground sampling distance of the surface grid")
	mode := fs.String("mode", config.DefaultInterpolation, "Surface interpolation: NN or TIN")
	alpha := fs.Float64("alpha", config.DefaultAlpha, "Contour circumradius threshold (0 = convex hull)")
	coverage := fs.String("coverage", config.DefaultCoverageMode, "Coverage mode: literal or cloud_fraction")
	workers := fs.Int("workers", 0, "Worker goroutines (0 = one per CPU)")
	crs := fs.String("crs", config.DefaultCRS, "CRS tag written to output collections")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	o.overrides = func(cfg *config.AnalysisConfig) {
		if set["gsd"] {
			cfg.SetGSD(*gsd)
		}
		if set["mode"] {
			cfg.SetInterpolation(*mode)
		}
		if set["alpha"] {
			cfg.SetAlpha(*alpha)
		}
		if set["coverage"] {
			cfg.SetCoverageMode(*coverage)
		}
		if set["workers"] {
			cfg.SetWorkers(*workers)
		}
		if set["crs"] {
			cfg.CRS = crs
		}
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if o.version {
		fmt.Println(version.String())
		return
	}
	if o.points == "" || o.polygons == "" {
		log.Fatal("-points and -polygons are required")
	}
	if o.diag {
		monitoring.SetDiagWriter(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, fsutil.OSFileSystem{}, o); err != nil {
		log.Fatalf("volumetrics: %v", err)
	}
}

// loadConfig reads -config, or config/analysis.defaults.json when present,
// then applies flag overrides.
func loadConfig(fsys fsutil.FileSystem, o *options) (*config.AnalysisConfig, error) {
	var cfg *config.AnalysisConfig
	var err error
	if o.configPath != "" {
		cfg, err = config.LoadAnalysisConfig(fsys, o.configPath)
	} else {
		cfg, err = config.LoadDefaultConfig(fsys)
	}
	if err != nil {
		return nil, err
	}
	if o.overrides != nil {
		o.overrides(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// run executes one full analysis: surface, region statistics, contours and
// the requested outputs. Only input and surface failures abort the run.
func run(ctx context.Context, fsys fsutil.FileSystem, o *options) error {
	start := time.Now()

	cfg, err := loadConfig(fsys, o)
	if err != nil {
		return err
	}
	mode, err := surface.ParseMode(cfg.GetInterpolation())
	if err != nil {
		return err
	}
	covMode, err := stats.ParseCoverageMode(cfg.GetCoverageMode())
	if err != nil {
		return err
	}

	cloud, err := readPoints(fsys, o.points)
	if err != nil {
		return err
	}
	regions, err := readRegions(fsys, o.polygons, cfg.GetIDProperty())
	if err != nil {
		return err
	}
	if overlaps := geo.FindOverlaps(regions); len(overlaps) > 0 {
		monitoring.Logf("warning: %d overlapping region pairs share grid cells: %v", len(overlaps), overlaps)
	}
	index := pointcloud.GroupBy(cloud)
	monitoring.Logf("loaded %d points in %d groups, %d regions", len(cloud), len(index), len(regions))

	grid, err := surface.Build(cloud, cfg.GetGSD(), mode)
	if err != nil {
		return fmt.Errorf("build surface: %w", err)
	}

	engine := &stats.Engine{
		Grid:  grid,
		Cloud: cloud,
		Index: index,
		Options: stats.Options{
			Workers:  cfg.GetWorkers(),
			Coverage: covMode,
		},
	}
	results, err := engine.Run(ctx, regions)
	if err != nil {
		return fmt.Errorf("region statistics: %w", err)
	}

	extractor := contour.Extractor{
		Alpha:   cfg.GetAlpha(),
		Workers: cfg.GetWorkers(),
	}
	shapes, err := extractor.Extract(ctx, cloud, index)
	if err != nil {
		return fmt.Errorf("contours: %w", err)
	}

	if err := geo.WriteResults(fsys, filepath.Join(o.out, regionsFile), regions, results, cfg.GetCRS()); err != nil {
		return err
	}
	if err := geo.WriteShapes(fsys, filepath.Join(o.out, contoursFile), shapes, cfg.GetCRS()); err != nil {
		return err
	}

	if o.dbPath != "" {
		if err := record(o.dbPath, cfg, mode, covMode, len(cloud), results, shapes); err != nil {
			return err
		}
	}
	if o.plotPath != "" {
		if err := report.RenderSurface(fsys, o.plotPath, grid, regions); err != nil {
			return err
		}
	}
	if o.reportPath != "" {
		if err := writeReport(fsys, o.reportPath, results); err != nil {
			return err
		}
	}

	monitoring.Logf("done in %v: %s, %d contours", time.Since(start).Round(time.Millisecond), stats.Summary(results), len(shapes))
	return nil
}

func readPoints(fsys fsutil.FileSystem, path string) (pointcloud.Cloud, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open points: %w", err)
	}
	defer f.Close()
	cloud, err := pointcloud.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read points %s: %w", path, err)
	}
	return cloud, nil
}

func readRegions(fsys fsutil.FileSystem, path, idProperty string) ([]stats.Region, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open polygons: %w", err)
	}
	defer f.Close()
	regions, err := geo.ReadRegions(f, idProperty)
	if err != nil {
		return nil, fmt.Errorf("read polygons %s: %w", path, err)
	}
	return regions, nil
}

// record stores the run parameters, region results and contours.
func record(path string, cfg *config.AnalysisConfig, mode surface.Mode, cov stats.CoverageMode,
	points int, results []stats.Result, shapes []contour.Shape) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(); err != nil {
		return err
	}

	params, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	run := &store.Run{
		GSD:           cfg.GetGSD(),
		Interpolation: mode.String(),
		Alpha:         cfg.GetAlpha(),
		CRS:           cfg.GetCRS(),
		CoverageMode:  cov.String(),
		PointCount:    points,
		RegionCount:   len(results),
		ParamsJSON:    params,
	}
	if err := st.CreateRun(run); err != nil {
		return err
	}
	if err := st.InsertResults(run.RunID, results); err != nil {
		return err
	}
	if err := st.InsertShapes(run.RunID, shapes); err != nil {
		return err
	}
	monitoring.Logf("recorded run %s in %s", run.RunID, path)
	return nil
}

func writeReport(fsys fsutil.FileSystem, path string, results []stats.Result) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return report.RenderSummary(f, results)
}
