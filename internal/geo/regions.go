package geo

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/banshee-data/volumetrics/internal/monitoring"
	"github.com/banshee-data/volumetrics/internal/stats"
)

// DefaultIDProperty names the feature property holding the region id.
const DefaultIDProperty = "pred_ID"

// maxInputBytes caps the size of a polygon collection read into memory.
const maxInputBytes = 256 << 20

// ReadRegions decodes a GeoJSON FeatureCollection into regions. Polygon and
// single-part MultiPolygon features are accepted; other geometries are
// skipped with a warning. Every accepted feature must carry an integer id
// in idProperty.
func ReadRegions(r io.Reader, idProperty string) ([]stats.Region, error) {
	if idProperty == "" {
		idProperty = DefaultIDProperty
	}
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}
	if len(data) > maxInputBytes {
		return nil, fmt.Errorf("read regions: input exceeds %d bytes", maxInputBytes)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode regions: %w", err)
	}

	regions := make([]stats.Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		poly, ok := asPolygon(f.Geometry)
		if !ok {
			monitoring.Logf("geo: feature %d skipped: unsupported geometry %T", i, f.Geometry)
			continue
		}
		id, err := featureID(f.Properties, idProperty)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		regions = append(regions, stats.Region{ID: id, Polygon: poly})
	}
	return regions, nil
}

func asPolygon(g orb.Geometry) (orb.Polygon, bool) {
	switch g := g.(type) {
	case orb.Polygon:
		return g, len(g) > 0
	case orb.MultiPolygon:
		if len(g) == 1 {
			return g[0], len(g[0]) > 0
		}
	}
	return nil, false
}

func featureID(props geojson.Properties, key string) (int, error) {
	v, ok := props[key]
	if !ok {
		return 0, fmt.Errorf("missing id property %q", key)
	}
	switch v := v.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("id property %q is not an integer: %v", key, v)
		}
		return int(v), nil
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("id property %q: %w", key, err)
		}
		return id, nil
	}
	return 0, fmt.Errorf("id property %q has unsupported type %T", key, v)
}
