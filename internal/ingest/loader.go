// Package ingest reads hourly hydrological CSV files and hands the core a
// validated, sorted, gap-filled series.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// timestampLayouts are tried in order. Layouts without an offset parse as UTC.
var timestampLayouts = []string{
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	time.DateOnly,
}

// numeric column order inside a parsed row.
const (
	colRain = iota
	colSoil
	colDischarge
	colGroundwater
	colImpervious
	numValues
)

var valueColumns = [numValues]string{
	domain.ColumnRainfall,
	domain.ColumnSoilMoisture,
	domain.ColumnDischarge,
	domain.ColumnGroundwater,
	domain.ColumnImperviousFraction,
}

// CoercionError reports a value the loader could neither parse nor repair.
type CoercionError struct {
	Column string
	Row    int // 1-based data row, 0 when the whole column is affected
	Value  string
	Reason string
}

func (e *CoercionError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("column %s: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("row %d column %s: %s %q", e.Row, e.Column, e.Reason, e.Value)
}

// Stats describes what the loader did to a file.
type Stats struct {
	Rows       int       `json:"rows"`
	Repaired   int       `json:"repaired"`
	Duplicates int       `json:"duplicates"`
	First      time.Time `json:"first,omitzero"`
	Last       time.Time `json:"last,omitzero"`
}

// Loader parses hourly CSV input.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader that reports repairs through logger.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile reads path, decompressing it first when it ends in .zst. The
// series is named after the file without its extensions.
func (l *Loader) LoadFile(path string) (domain.Series, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Series{}, Stats{}, fmt.Errorf("csv not found: %s", path)
		}
		return domain.Series{}, Stats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return domain.Series{}, Stats{}, fmt.Errorf("zstd reader %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	return l.Parse(r, SeriesName(path))
}

// SeriesName derives a dataset name from a file path: the base name without
// .zst and .csv suffixes.
func SeriesName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".zst")
	return strings.TrimSuffix(name, ".csv")
}

type row struct {
	ts   time.Time
	vals [numValues]float64
}

// Parse reads CSV from r. Required columns must be present; unparseable or
// empty numeric cells are forward- then back-filled; values are clipped to
// their physical ranges; rows are sorted by timestamp and duplicate
// timestamps keep their first occurrence.
func (l *Loader) Parse(r io.Reader, name string) (domain.Series, Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Series{}, Stats{}, &domain.SchemaError{Missing: domain.RequiredColumns}
	}
	if err != nil {
		return domain.Series{}, Stats{}, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if err := domain.CheckSchema(header); err != nil {
		return domain.Series{}, Stats{}, err
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := colIdx[h]; !dup {
			colIdx[h] = i
		}
	}
	present := [numValues]bool{}
	for c, col := range valueColumns {
		_, present[c] = colIdx[col]
	}

	var stats Stats
	var rows []row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Series{}, Stats{}, fmt.Errorf("read row %d: %w", line, err)
		}

		tsRaw := field(rec, colIdx[domain.ColumnTimestamp])
		ts, ok := parseTimestamp(tsRaw)
		if !ok {
			return domain.Series{}, Stats{}, &CoercionError{
				Column: domain.ColumnTimestamp, Row: line, Value: tsRaw, Reason: "unparseable timestamp",
			}
		}

		rw := row{ts: ts}
		for c, col := range valueColumns {
			if !present[c] {
				rw.vals[c] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(field(rec, colIdx[col]), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				stats.Repaired++
				v = math.NaN()
			}
			rw.vals[c] = clip(c, v)
		}
		rows = append(rows, rw)
	}

	slices.SortStableFunc(rows, func(a, b row) int { return a.ts.Compare(b.ts) })
	rows = slices.CompactFunc(rows, func(a, b row) bool {
		if a.ts.Equal(b.ts) {
			stats.Duplicates++
			return true
		}
		return false
	})

	for c := range valueColumns {
		if !present[c] || len(rows) == 0 {
			continue
		}
		if !fill(rows, c) && c <= colDischarge {
			return domain.Series{}, Stats{}, &CoercionError{
				Column: valueColumns[c], Reason: "no parseable values",
			}
		}
	}

	hours := make([]domain.HourlyRecord, len(rows))
	for i, rw := range rows {
		hours[i] = domain.HourlyRecord{
			Timestamp:          rw.ts,
			RainfallMM:         rw.vals[colRain],
			SoilMoisture:       rw.vals[colSoil],
			RiverDischargeM3S:  rw.vals[colDischarge],
			GroundwaterIndex:   optional(rw.vals[colGroundwater]),
			ImperviousFraction: optional(rw.vals[colImpervious]),
		}
	}

	stats.Rows = len(hours)
	if len(hours) > 0 {
		stats.First = hours[0].Timestamp
		stats.Last = hours[len(hours)-1].Timestamp
	}

	if stats.Repaired > 0 {
		l.logger.Warn("missing or non-numeric values filled", "dataset", name, "count", stats.Repaired)
	}
	if stats.Duplicates > 0 {
		l.logger.Warn("duplicate timestamps dropped", "dataset", name, "count", stats.Duplicates)
	}
	attrs := []any{"dataset", name, "rows", stats.Rows}
	if stats.Rows > 0 {
		attrs = append(attrs, "first", stats.First.Format(time.DateOnly), "last", stats.Last.Format(time.DateOnly))
	}
	l.logger.Info("dataset loaded", attrs...)

	return domain.Series{Name: name, Columns: header, Hours: hours}, stats, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// clip bounds a value to its column's physical range. NaN passes through.
func clip(col int, v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	switch col {
	case colRain, colDischarge:
		return max(v, 0)
	default:
		return min(max(v, 0), 1)
	}
}

// fill forward-fills then back-fills NaNs in column c. It returns false when
// the column holds no value at all.
func fill(rows []row, c int) bool {
	last := math.NaN()
	for i := range rows {
		if math.IsNaN(rows[i].vals[c]) {
			rows[i].vals[c] = last
			continue
		}
		last = rows[i].vals[c]
	}
	if math.IsNaN(last) {
		return false
	}
	next := math.NaN()
	for i := len(rows) - 1; i >= 0; i-- {
		if math.IsNaN(rows[i].vals[c]) {
			rows[i].vals[c] = next
			continue
		}
		next = rows[i].vals[c]
	}
	return true
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
