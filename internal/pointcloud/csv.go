package pointcloud

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// groupColumns lists the accepted header names for the group id column.
var groupColumns = []string{"group_id", "pred_id", "groupid"}

// ReadCSV parses a delimited point table with a header row naming x, y, z and
// a group id column (group_id or pred_ID, case-insensitive). Extra columns are
// ignored. Rows without a group id column default to the background group.
func ReadCSV(r io.Reader) (Cloud, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyPointCloud
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	xi, okX := cols["x"]
	yi, okY := cols["y"]
	zi, okZ := cols["z"]
	if !okX || !okY || !okZ {
		return nil, fmt.Errorf("header must contain x, y and z columns, got %v", header)
	}
	gi := -1
	for _, name := range groupColumns {
		if i, ok := cols[name]; ok {
			gi = i
			break
		}
	}

	var cloud Cloud
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var p Point
		if p.X, err = parseCoord(rec[xi]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse x: %w", line, err)
		}
		if p.Y, err = parseCoord(rec[yi]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse y: %w", line, err)
		}
		if p.Z, err = parseCoord(rec[zi]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse z: %w", line, err)
		}
		if gi >= 0 {
			if p.GroupID, err = parseGroupID(rec[gi]); err != nil {
				return nil, fmt.Errorf("line %d: failed to parse group id: %w", line, err)
			}
		}
		cloud = append(cloud, p)
	}

	if len(cloud) == 0 {
		return nil, ErrEmptyPointCloud
	}
	return cloud, nil
}

func parseCoord(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// parseGroupID accepts integers and integral floats ("3" or "3.0"), since
// classifier exports often write ids as floats.
func parseGroupID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("group id %q is not integral", s)
	}
	return int(f), nil
}
