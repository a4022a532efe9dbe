// Package report renders analysis outputs for humans: a heat map of the
// interpolated surface and an HTML summary of per-region statistics.
package report

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/volumetrics/internal/fsutil"
	"github.com/banshee-data/volumetrics/internal/monitoring"
	"github.com/banshee-data/volumetrics/internal/stats"
	"github.com/banshee-data/volumetrics/internal/surface"
)

const paletteSize = 255

var outlineColor = color.RGBA{R: 0, G: 160, B: 255, A: 255}

// gridXYZ adapts a surface.Grid to plotter.GridXYZ.
type gridXYZ struct{ g *surface.Grid }

func (a gridXYZ) Dims() (c, r int)   { return a.g.Cols, a.g.Rows }
func (a gridXYZ) Z(c, r int) float64 { return a.g.At(r, c) }
func (a gridXYZ) X(c int) float64    { return a.g.OriginX + float64(c)*a.g.GSD }
func (a gridXYZ) Y(r int) float64    { return a.g.OriginY + float64(r)*a.g.GSD }

// RenderSurface draws the grid as a heat map with every region outline on
// top and writes it to path. The image format follows the file extension
// (png, svg, pdf, ...). Cells without data are left transparent.
func RenderSurface(fsys fsutil.FileSystem, path string, g *surface.Grid, regions []stats.Region) error {
	if g == nil {
		return fmt.Errorf("render surface: %w", surface.ErrNoGridCoverage)
	}
	lo, hi, ok := g.ZRange()
	if !ok {
		return fmt.Errorf("render surface: %w", surface.ErrNoGridCoverage)
	}
	if hi == lo {
		hi = lo + 1
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return fmt.Errorf("render surface: no image format in %q", path)
	}

	cmap := moreland.ExtendedBlackBody()
	cmap.SetMin(lo)
	cmap.SetMax(hi)

	hm := plotter.NewHeatMap(gridXYZ{g}, cmap.Palette(paletteSize))
	hm.Min, hm.Max = lo, hi
	hm.NaN = color.Transparent
	hm.Rasterized = true

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Surface %dx%d @ %g m", g.Cols, g.Rows, g.GSD)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(hm)

	for _, r := range regions {
		for _, ring := range r.Polygon {
			if len(ring) < 2 {
				continue
			}
			line, err := plotter.NewLine(ringXYs(ring))
			if err != nil {
				return fmt.Errorf("region %d outline: %w", r.ID, err)
			}
			line.Width = vg.Points(1)
			line.Color = outlineColor
			p.Add(line)
		}
	}

	wt, err := p.WriterTo(10*vg.Inch, 10*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("render surface: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	monitoring.Logf("report: surface plot written to %s (z %.3f..%.3f)", path, lo, hi)
	return nil
}

func ringXYs(ring orb.Ring) plotter.XYs {
	pts := make(plotter.XYs, 0, len(ring))
	for _, pt := range ring {
		if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) {
			continue
		}
		pts = append(pts, plotter.XY{X: pt[0], Y: pt[1]})
	}
	return pts
}
