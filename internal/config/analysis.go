package config

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/banshee-data/volumetrics/internal/fsutil"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// Compiled-in defaults used by the Get* accessors when a field is unset.
const (
	DefaultGSD           = 0.1
	DefaultInterpolation = "NN"
	DefaultAlpha         = 10.0
	DefaultCRS           = "EPSG:2180"
	DefaultCoverageMode  = "literal"
	DefaultIDProperty    = "pred_ID"
)

// AnalysisConfig holds the parameters of one statistics + contour run.
// Every field is optional; omitted fields fall back to the compiled defaults
// so partial configs are safe.
type AnalysisConfig struct {
	// GSD is the ground sampling distance of the height-field grid (metres).
	GSD *float64 `json:"gsd,omitempty"`
	// Interpolation selects the surface builder: "NN" or "TIN".
	Interpolation *string `json:"interpolation,omitempty"`
	// Alpha is the contour circumradius threshold in coordinate units.
	Alpha *float64 `json:"alpha,omitempty"`
	// CRS is the reference system tag attached to every output collection.
	CRS *string `json:"crs,omitempty"`
	// Workers bounds per-polygon and per-group fan-out. 0 means runtime.NumCPU().
	Workers *int `json:"workers,omitempty"`
	// CoverageMode is "literal" or "cloud_fraction".
	CoverageMode *string `json:"coverage_mode,omitempty"`
	// IDProperty names the polygon feature property holding the group id.
	IDProperty *string `json:"id_property,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields set to nil.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with every field populated from the
// compiled defaults.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		GSD:           ptrFloat64(DefaultGSD),
		Interpolation: ptrString(DefaultInterpolation),
		Alpha:         ptrFloat64(DefaultAlpha),
		CRS:           ptrString(DefaultCRS),
		Workers:       ptrInt(0),
		CoverageMode:  ptrString(DefaultCoverageMode),
		IDProperty:    ptrString(DefaultIDProperty),
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file on fsys.
// The file must have a .json extension and be under 1MB.
func LoadAnalysisConfig(fsys fsutil.FileSystem, path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", len(data), maxFileSize)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDefaultConfig loads DefaultConfigPath from fsys when it exists and
// otherwise returns the compiled defaults.
func LoadDefaultConfig(fsys fsutil.FileSystem) (*AnalysisConfig, error) {
	if !fsys.Exists(DefaultConfigPath) {
		return DefaultAnalysisConfig(), nil
	}
	return LoadAnalysisConfig(fsys, DefaultConfigPath)
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	if c.GSD != nil {
		if math.IsNaN(*c.GSD) || math.IsInf(*c.GSD, 0) || *c.GSD <= 0 {
			return fmt.Errorf("gsd must be a positive finite number, got %v", *c.GSD)
		}
	}

	if c.Interpolation != nil {
		switch strings.ToUpper(*c.Interpolation) {
		case "NN", "NEAREST", "TIN":
		default:
			return fmt.Errorf("interpolation must be NN or TIN, got %q", *c.Interpolation)
		}
	}

	if c.Alpha != nil && (math.IsNaN(*c.Alpha) || *c.Alpha < 0) {
		return fmt.Errorf("alpha must be non-negative, got %v", *c.Alpha)
	}

	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	if c.CoverageMode != nil {
		switch *c.CoverageMode {
		case "literal", "cloud_fraction":
		default:
			return fmt.Errorf("coverage_mode must be literal or cloud_fraction, got %q", *c.CoverageMode)
		}
	}

	if c.CRS != nil && strings.TrimSpace(*c.CRS) == "" {
		return fmt.Errorf("crs must not be empty")
	}

	return nil
}

// GetGSD returns the gsd value or the default.
func (c *AnalysisConfig) GetGSD() float64 {
	if c.GSD == nil {
		return DefaultGSD
	}
	return *c.GSD
}

// GetInterpolation returns the interpolation value or the default.
func (c *AnalysisConfig) GetInterpolation() string {
	if c.Interpolation == nil || *c.Interpolation == "" {
		return DefaultInterpolation
	}
	return *c.Interpolation
}

// GetAlpha returns the alpha value or the default.
func (c *AnalysisConfig) GetAlpha() float64 {
	if c.Alpha == nil {
		return DefaultAlpha
	}
	return *c.Alpha
}

// GetCRS returns the crs value or the default.
func (c *AnalysisConfig) GetCRS() string {
	if c.CRS == nil || *c.CRS == "" {
		return DefaultCRS
	}
	return *c.CRS
}

// GetWorkers returns the worker count, resolving 0 to runtime.NumCPU().
func (c *AnalysisConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers == 0 {
		return runtime.NumCPU()
	}
	return *c.Workers
}

// GetCoverageMode returns the coverage_mode value or the default.
func (c *AnalysisConfig) GetCoverageMode() string {
	if c.CoverageMode == nil || *c.CoverageMode == "" {
		return DefaultCoverageMode
	}
	return *c.CoverageMode
}

// GetIDProperty returns the id_property value or the default.
func (c *AnalysisConfig) GetIDProperty() string {
	if c.IDProperty == nil || *c.IDProperty == "" {
		return DefaultIDProperty
	}
	return *c.IDProperty
}

// SetGSD overrides the gsd value (used by command-line flags).
func (c *AnalysisConfig) SetGSD(v float64) { c.GSD = ptrFloat64(v) }

// SetInterpolation overrides the interpolation value.
func (c *AnalysisConfig) SetInterpolation(v string) { c.Interpolation = ptrString(v) }

// SetAlpha overrides the alpha value.
func (c *AnalysisConfig) SetAlpha(v float64) { c.Alpha = ptrFloat64(v) }

// SetCoverageMode overrides the coverage_mode value.
func (c *AnalysisConfig) SetCoverageMode(v string) { c.CoverageMode = ptrString(v) }

// SetWorkers overrides the workers value.
func (c *AnalysisConfig) SetWorkers(v int) { c.Workers = ptrInt(v) }
