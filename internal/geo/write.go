package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/banshee-data/volumetrics/internal/contour"
	"github.com/banshee-data/volumetrics/internal/fsutil"
	"github.com/banshee-data/volumetrics/internal/stats"
)

// Property keys written on result features.
const (
	PropVolume      = "volume"
	PropArea3D      = "area3D"
	PropArea25D     = "area25D"
	PropCoverage    = "coverage"
	PropBaseHeight  = "base_height"
	PropCellsInside = "cells_inside"
	PropPoints      = "points"
	PropFailures    = "failures"
	PropGroupID     = "group_id"
)

// ResultCollection pairs regions with their results, index by index.
func ResultCollection(regions []stats.Region, results []stats.Result, crs string) (*geojson.FeatureCollection, error) {
	if len(regions) != len(results) {
		return nil, fmt.Errorf("%d regions but %d results", len(regions), len(results))
	}
	fc := newCollection(crs)
	for i, reg := range regions {
		res := results[i]
		f := geojson.NewFeature(reg.Polygon)
		f.Properties[DefaultIDProperty] = reg.ID
		f.Properties[PropVolume] = number(res.Volume)
		f.Properties[PropArea3D] = number(res.Area3D)
		f.Properties[PropArea25D] = number(res.Area25D)
		f.Properties[PropCoverage] = number(res.Coverage)
		f.Properties[PropBaseHeight] = number(res.BaseHeight)
		f.Properties[PropCellsInside] = res.CellsInside
		f.Properties[PropPoints] = res.Points
		if len(res.Failures) > 0 {
			msgs := make([]string, len(res.Failures))
			for j, fl := range res.Failures {
				msgs[j] = fl.Error()
			}
			f.Properties[PropFailures] = msgs
		}
		fc.Append(f)
	}
	return fc, nil
}

// ShapeCollection wraps contour shapes as features keyed by group id.
func ShapeCollection(shapes []contour.Shape, crs string) *geojson.FeatureCollection {
	fc := newCollection(crs)
	for _, s := range shapes {
		f := geojson.NewFeature(s.Polygon)
		f.Properties[PropGroupID] = s.GroupID
		fc.Append(f)
	}
	return fc
}

// WriteResults writes the enriched region collection to path.
func WriteResults(fsys fsutil.FileSystem, path string, regions []stats.Region, results []stats.Result, crs string) error {
	fc, err := ResultCollection(regions, results, crs)
	if err != nil {
		return err
	}
	return writeCollection(fsys, path, fc)
}

// WriteShapes writes the contour collection to path.
func WriteShapes(fsys fsutil.FileSystem, path string, shapes []contour.Shape, crs string) error {
	return writeCollection(fsys, path, ShapeCollection(shapes, crs))
}

func writeCollection(fsys fsutil.FileSystem, path string, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func newCollection(crs string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if crs != "" {
		fc.ExtraMembers = geojson.Properties{"crs": NamedCRS(crs)}
	}
	return fc
}

// NamedCRS builds the legacy GeoJSON "crs" member. EPSG codes are expanded
// to their OGC URN.
func NamedCRS(crs string) map[string]interface{} {
	name := crs
	if code, ok := strings.CutPrefix(strings.ToUpper(crs), "EPSG:"); ok {
		name = "urn:ogc:def:crs:EPSG::" + code
	}
	return map[string]interface{}{
		"type":       "name",
		"properties": map[string]interface{}{"name": name},
	}
}

// number maps non-finite values to JSON null.
func number(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
