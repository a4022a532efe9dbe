package stats

import (
	"fmt"
	"strings"
)

// CoverageMode selects the ratio applied to the polygon area.
type CoverageMode int

const (
	// CoverageLiteral divides the region's point count by itself, so any
	// non-empty region reports its full polygon area.
	CoverageLiteral CoverageMode = iota
	// CoverageCloudFraction divides the region's point count by the size of
	// the whole cloud.
	CoverageCloudFraction
)

func (m CoverageMode) String() string {
	switch m {
	case CoverageLiteral:
		return "literal"
	case CoverageCloudFraction:
		return "cloud_fraction"
	default:
		return fmt.Sprintf("CoverageMode(%d)", int(m))
	}
}

// ParseCoverageMode accepts "literal" and "cloud_fraction".
func ParseCoverageMode(s string) (CoverageMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "literal", "":
		return CoverageLiteral, nil
	case "cloud_fraction":
		return CoverageCloudFraction, nil
	}
	return 0, fmt.Errorf("unknown coverage mode %q (want literal or cloud_fraction)", s)
}

// Coverage scales polygonArea by a point-count ratio. An empty subset always
// yields 0.
func Coverage(subsetCount, totalCount int, polygonArea float64, mode CoverageMode) float64 {
	if subsetCount <= 0 {
		return 0
	}
	switch mode {
	case CoverageCloudFraction:
		if totalCount <= 0 {
			return 0
		}
		return float64(subsetCount) / float64(totalCount) * polygonArea
	default:
		return float64(subsetCount) / float64(subsetCount) * polygonArea
	}
}
