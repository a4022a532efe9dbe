package surface

import (
	"fmt"
	"strings"
)

// Mode selects how cell heights are derived from source points.
type Mode int

const (
	// NearestNeighbour copies the z of the closest source point.
	NearestNeighbour Mode = iota
	// TIN interpolates linearly within a Delaunay triangulation.
	TIN
)

func (m Mode) String() string {
	switch m {
	case NearestNeighbour:
		return "NN"
	case TIN:
		return "TIN"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "NN", "nearest" and "TIN" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nn", "nearest":
		return NearestNeighbour, nil
	case "tin":
		return TIN, nil
	}
	return 0, fmt.Errorf("unknown interpolation mode %q (want NN or TIN)", s)
}

// Interpolator returns the strategy implementing m.
func (m Mode) Interpolator() (Interpolator, error) {
	switch m {
	case NearestNeighbour:
		return nearestInterpolator{}, nil
	case TIN:
		return tinInterpolator{}, nil
	}
	return nil, fmt.Errorf("unsupported interpolation mode %v", m)
}
