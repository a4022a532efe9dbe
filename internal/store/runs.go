package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/banshee-data/volumetrics/internal/contour"
	"github.com/banshee-data/volumetrics/internal/stats"
)

// Run describes one analysis invocation.
type Run struct {
	RunID         string          `json:"run_id"`
	CreatedAt     int64           `json:"created_at"`
	GSD           float64         `json:"gsd"`
	Interpolation string          `json:"interpolation"`
	Alpha         float64         `json:"alpha"`
	CRS           string          `json:"crs"`
	CoverageMode  string          `json:"coverage_mode"`
	PointCount    int             `json:"point_count"`
	RegionCount   int             `json:"region_count"`
	ParamsJSON    json.RawMessage `json:"params_json,omitempty"`
}

// CreateRun persists run. If RunID is empty, a UUID is generated.
func (s *Store) CreateRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}
	var params interface{}
	if len(run.ParamsJSON) > 0 {
		params = string(run.ParamsJSON)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO analysis_runs (
				run_id, created_at, gsd, interpolation, alpha, crs,
				coverage_mode, point_count, region_count, params_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.CreatedAt, run.GSD, run.Interpolation, run.Alpha, run.CRS,
			run.CoverageMode, run.PointCount, run.RegionCount, params,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

// GetRun returns the run with the given id.
func (s *Store) GetRun(runID string) (*Run, error) {
	var r Run
	var params sql.NullString
	err := s.db.QueryRow(`
		SELECT run_id, created_at, gsd, interpolation, alpha, crs,
		       coverage_mode, point_count, region_count, params_json
		FROM analysis_runs
		WHERE run_id = ?`, runID).Scan(
		&r.RunID, &r.CreatedAt, &r.GSD, &r.Interpolation, &r.Alpha, &r.CRS,
		&r.CoverageMode, &r.PointCount, &r.RegionCount, &params,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if params.Valid {
		r.ParamsJSON = json.RawMessage(params.String)
	}
	return &r, nil
}

type failureRecord struct {
	Metric string `json:"metric"`
	Error  string `json:"error"`
}

// InsertResults stores the per-region results of a run in one transaction.
// Rows are keyed by position in results, so regions sharing an id are kept.
func (s *Store) InsertResults(runID string, results []stats.Result) error {
	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		stmt, err := tx.Prepare(`
			INSERT INTO region_results (
				run_id, region_index, region_id, volume, area3d, area25d, coverage,
				base_height, cells_inside, points, failures_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare: %w", err)
		}
		defer stmt.Close()

		for i, r := range results {
			var failures interface{}
			if len(r.Failures) > 0 {
				recs := make([]failureRecord, len(r.Failures))
				for j, f := range r.Failures {
					recs[j] = failureRecord{Metric: f.Metric, Error: f.Err.Error()}
				}
				b, err := json.Marshal(recs)
				if err != nil {
					return err
				}
				failures = string(b)
			}
			if _, err := stmt.Exec(runID, i, r.ID,
				nullable(r.Volume), nullable(r.Area3D), nullable(r.Area25D), nullable(r.Coverage),
				nullable(r.BaseHeight), r.CellsInside, r.Points, failures,
			); err != nil {
				return fmt.Errorf("insert result %d (region %d): %w", i, r.ID, err)
			}
		}
		return tx.Commit()
	})
}

// ListResults returns the results of a run in insertion order. NULL metrics
// come back as NaN.
func (s *Store) ListResults(runID string) ([]stats.Result, error) {
	rows, err := s.db.Query(`
		SELECT region_id, volume, area3d, area25d, coverage,
		       base_height, cells_inside, points, failures_json
		FROM region_results
		WHERE run_id = ?
		ORDER BY region_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []stats.Result
	for rows.Next() {
		var r stats.Result
		var vol, a3, a25, cov, base sql.NullFloat64
		var failures sql.NullString
		if err := rows.Scan(&r.ID, &vol, &a3, &a25, &cov, &base, &r.CellsInside, &r.Points, &failures); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		r.Volume, r.Area3D, r.Area25D = orNaN(vol), orNaN(a3), orNaN(a25)
		r.Coverage, r.BaseHeight = orNaN(cov), orNaN(base)
		if failures.Valid {
			var recs []failureRecord
			if err := json.Unmarshal([]byte(failures.String), &recs); err != nil {
				return nil, fmt.Errorf("decode failures of region %d: %w", r.ID, err)
			}
			for _, f := range recs {
				r.Failures = append(r.Failures, stats.Failure{Metric: f.Metric, Err: errors.New(f.Error)})
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertShapes stores contour shapes as GeoJSON geometries.
func (s *Store) InsertShapes(runID string, shapes []contour.Shape) error {
	return retryOnBusy(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback()

		for _, sh := range shapes {
			geom, err := json.Marshal(geojson.NewGeometry(sh.Polygon))
			if err != nil {
				return fmt.Errorf("encode shape %d: %w", sh.GroupID, err)
			}
			if _, err := tx.Exec(`
				INSERT INTO contour_shapes (run_id, group_id, area, geometry)
				VALUES (?, ?, ?, ?)`,
				runID, sh.GroupID, planar.Area(sh.Polygon), string(geom),
			); err != nil {
				return fmt.Errorf("insert shape %d: %w", sh.GroupID, err)
			}
		}
		return tx.Commit()
	})
}

// ListShapes returns the shapes of a run ordered by group id.
func (s *Store) ListShapes(runID string) ([]contour.Shape, error) {
	rows, err := s.db.Query(`
		SELECT group_id, geometry FROM contour_shapes
		WHERE run_id = ?
		ORDER BY group_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query shapes: %w", err)
	}
	defer rows.Close()

	var out []contour.Shape
	for rows.Next() {
		var sh contour.Shape
		var geom string
		if err := rows.Scan(&sh.GroupID, &geom); err != nil {
			return nil, fmt.Errorf("scan shape row: %w", err)
		}
		g, err := geojson.UnmarshalGeometry([]byte(geom))
		if err != nil {
			return nil, fmt.Errorf("decode shape %d: %w", sh.GroupID, err)
		}
		poly, ok := g.Geometry().(orb.Polygon)
		if !ok {
			return nil, fmt.Errorf("shape %d is a %T", sh.GroupID, g.Geometry())
		}
		sh.Polygon = poly
		out = append(out, sh)
	}
	return out, rows.Err()
}

func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
