package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/volumetrics/internal/stats"
)

// missing is how echarts marks an absent data point.
const missing = "-"

// RenderSummary writes an HTML page with per-region bar charts of volume,
// surface areas, coverage and base height. Failed metrics are drawn as gaps.
func RenderSummary(w io.Writer, results []stats.Result) error {
	labels := make([]string, len(results))
	var (
		volume   = make([]opts.BarData, len(results))
		area3D   = make([]opts.BarData, len(results))
		area25D  = make([]opts.BarData, len(results))
		coverage = make([]opts.BarData, len(results))
		base     = make([]opts.BarData, len(results))
	)
	for i, r := range results {
		labels[i] = fmt.Sprintf("region %d", r.ID)
		volume[i] = barValue(r.Volume)
		area3D[i] = barValue(r.Area3D)
		area25D[i] = barValue(r.Area25D)
		coverage[i] = barValue(r.Coverage)
		base[i] = barValue(r.BaseHeight)
	}

	sum := stats.Summary(results)

	metrics := charts.NewBar()
	metrics.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Region statistics", Width: "100%", Height: "560px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Region statistics",
			Subtitle: fmt.Sprintf("regions=%d failed=%d volume=%.3f m³", sum.Regions, sum.Failed, sum.TotalVolume),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	metrics.SetXAxis(labels).
		AddSeries("volume (m³)", volume).
		AddSeries("area3D (m²)", area3D).
		AddSeries("area2.5D (m²)", area25D)

	extent := charts.NewBar()
	extent.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{Title: "Coverage and base height"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	extent.SetXAxis(labels).
		AddSeries("coverage (m²)", coverage).
		AddSeries("base height (m)", base,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.SetPageTitle("Region statistics")
	page.AddCharts(metrics, extent)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}

func barValue(v float64) opts.BarData {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return opts.BarData{Value: missing}
	}
	return opts.BarData{Value: v}
}
