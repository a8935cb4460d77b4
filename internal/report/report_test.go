package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/ingest"
)

var fixedNow = time.Date(2024, time.May, 2, 6, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(fixedNow))
	t.Cleanup(func() { domain.SetClock(nil) })
}

// threeDays builds a series with a quiet day, a wet day and a saturated
// storm day.
func threeDays(t *testing.T) domain.Assessment {
	t.Helper()
	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	var hours []domain.HourlyRecord
	for i := range 72 {
		h := domain.HourlyRecord{
			Timestamp:         start.Add(time.Duration(i) * time.Hour),
			SoilMoisture:      0.3,
			RiverDischargeM3S: 100,
		}
		switch i / 24 {
		case 1:
			h.RainfallMM = 10
			h.SoilMoisture = 0.7
		case 2:
			h.RainfallMM = 20
			h.SoilMoisture = 0.99
		}
		hours = append(hours, h)
	}
	a, err := domain.Assess(domain.Series{
		Name:    "Test Basin/North",
		Columns: domain.RequiredColumns,
		Hours:   hours,
	}, domain.DefaultThresholds())
	require.NoError(t, err)
	require.Len(t, a.Days, 3)
	return a
}

func TestSafeLabel(t *testing.T) {
	assert.Equal(t, "Midwest_2019", SafeLabel("Midwest 2019"))
	assert.Equal(t, "Test_Basin-North", SafeLabel("Test Basin/North"))
}

func TestNewDocument(t *testing.T) {
	freezeClock(t)
	a := threeDays(t)
	stats := &ingest.Stats{Rows: 72, Repaired: 2}

	doc := NewDocument("run-1", a, stats)

	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, "Test Basin/North", doc.Dataset)
	assert.Equal(t, fixedNow, doc.GeneratedAt)
	assert.Equal(t, map[string]int{"Stable": 1, "Straining": 0, "Failure": 2}, doc.StateCounts)
	require.Len(t, doc.Summary, 3)
	require.NotNil(t, doc.Peak)
	assert.Equal(t, a.Days[2].Date, doc.Peak.Date)
	assert.Same(t, stats, doc.Input)
}

func TestNewDocument_Empty(t *testing.T) {
	freezeClock(t)
	a, err := domain.Assess(domain.Series{Name: "empty", Columns: domain.RequiredColumns}, domain.DefaultThresholds())
	require.NoError(t, err)

	doc := NewDocument("run-2", a, nil)
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.Nil(t, doc.Peak)
	assert.Contains(t, string(data), `"days":[]`)
	assert.Contains(t, string(data), `"summary":[]`)
	assert.NotContains(t, string(data), `"input"`)
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestWriteSummaryCSV(t *testing.T) {
	a := threeDays(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, domain.Summarize(a.Days)))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, summaryHeader, recs[0])
	assert.Equal(t, "2024-05-01", recs[1][0])
	assert.Equal(t, "Stable", recs[1][4])
	assert.Equal(t, "Failure", recs[3][4])
}

func TestWriteTable(t *testing.T) {
	a := threeDays(t)
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, domain.Summarize(a.Days)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "risk_multiplier")
	assert.Contains(t, lines[3], "2024-05-03")
	assert.Contains(t, lines[3], "Failure")
}

func decodePNG(t *testing.T, data []byte) image.Config {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	return cfg
}

func TestWriteFigure(t *testing.T) {
	a := threeDays(t)
	var buf bytes.Buffer
	require.NoError(t, WriteFigure(&buf, a))

	cfg := decodePNG(t, buf.Bytes())
	assert.Greater(t, cfg.Height, cfg.Width)

	var again bytes.Buffer
	require.NoError(t, WriteFigure(&again, a))
	assert.Equal(t, buf.Bytes(), again.Bytes(), "rendering is deterministic")
}

func TestFigurePlots(t *testing.T) {
	a := threeDays(t)
	plots, err := figurePlots(a)
	require.NoError(t, err)
	require.Len(t, plots, numPanels)

	for i, p := range plots {
		assert.Contains(t, p.Title.Text, fmt.Sprintf("Panel %d:", i+1))
		assert.Equal(t, 0.0, p.X.Min)
		assert.Equal(t, 3.0, p.X.Max)
	}
	assert.Contains(t, plots[0].Title.Text, "Test Basin/North")
	assert.Contains(t, plots[4].Title.Text, "CFL/80")

	ticks := plots[0].X.Tick.Marker.Ticks(0, 3)
	require.Len(t, ticks, 3)
	assert.Equal(t, "May 01", ticks[0].Label)
	assert.Equal(t, 2.5, ticks[2].Value)
}

func TestFigure_HourPosition(t *testing.T) {
	a := threeDays(t)
	f := newFigure(a)
	assert.Equal(t, 0.5, f.hourPos(time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2.25, f.hourPos(time.Date(2024, time.May, 3, 6, 0, 0, 0, time.UTC)))
}

func TestStateColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}, stateColor(domain.Failure))
	assert.Equal(t, color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}, stateColor(domain.Stable))
}

func TestWriteFigure_Empty(t *testing.T) {
	empty := domain.Assessment{Name: "empty", Thresholds: domain.DefaultThresholds()}
	var buf bytes.Buffer
	require.NoError(t, WriteFigure(&buf, empty))
	decodePNG(t, buf.Bytes())

	plots, err := figurePlots(empty)
	require.NoError(t, err)
	for _, p := range plots {
		assert.Contains(t, p.Title.Text, "(no data)")
	}
}

func TestRender(t *testing.T) {
	freezeClock(t)
	a := threeDays(t)

	artifacts, err := Render(NewDocument("run-3", a, nil), a)
	require.NoError(t, err)
	require.Len(t, artifacts, 3)

	keys := map[string]string{}
	for _, art := range artifacts {
		keys[art.Key] = art.ContentType
		assert.NotEmpty(t, art.Data)
	}
	assert.Equal(t, map[string]string{
		"Test_Basin-North_summary.csv":     ContentTypeCSV,
		"Test_Basin-North_assessment.json": ContentTypeJSON,
		"Test_Basin-North_flood_risk.png":  ContentTypePNG,
	}, keys)

	var doc Document
	require.NoError(t, json.Unmarshal(artifacts[1].Data, &doc))
	assert.Equal(t, "run-3", doc.RunID)
	assert.Equal(t, a.Days, doc.Days)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "nested/out.csv", []byte("a,b\n"), ContentTypeCSV))

	data, err := os.ReadFile(store.Location("nested/out.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}
