// Package table reads and writes the ranked score table.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/schoolscope/internal/model"
)

// Fixed leading columns of the table.
const (
	ColumnSchool  = "School"
	ColumnOverall = "Overall"
)

// ErrNoHeader is returned when a table file is empty.
var ErrNoHeader = errors.New("table has no header row")

// Header returns the column names for a dimension catalog.
func Header(dims []model.Dimension) []string {
	header := []string{ColumnSchool, ColumnOverall}
	for _, d := range dims {
		header = append(header, d.Header)
	}
	return header
}

// FormatScore renders a score the way the table has always stored it:
// shortest decimal form, with at least one fractional digit ("4.0", "3.75").
func FormatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Write replaces the table at path with rows, in the order given. The file
// is written to a temporary sibling first and renamed into place.
func Write(path string, dims []model.Dimension, rows []model.ScoreRow) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".table-*.csv")
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(Header(dims)); err != nil {
		tmp.Close()
		return fmt.Errorf("write table header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.School, FormatScore(row.Overall)}
		for _, d := range dims {
			record = append(record, FormatScore(row.Scores[d.Name]))
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write table row %s: %w", row.School, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush table: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close table: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace table: %w", err)
	}
	return nil
}

// Read loads a table as one map per row, keyed by header name. Short rows
// leave their missing columns out of the map.
func Read(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoHeader, path)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
