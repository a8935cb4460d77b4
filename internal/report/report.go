// Package report renders assessments into the artifacts handed to users: a
// JSON document, a summary CSV, a plain-text table and a PNG figure.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/ingest"
)

// Document is the JSON form of one assessment.
type Document struct {
	RunID       string               `json:"run_id"`
	Dataset     string               `json:"dataset"`
	GeneratedAt time.Time            `json:"generated_at"`
	Thresholds  domain.Thresholds    `json:"thresholds"`
	Input       *ingest.Stats        `json:"input,omitempty"`
	StateCounts map[string]int       `json:"state_counts"`
	Peak        *domain.SummaryRow   `json:"peak,omitempty"`
	Summary     []domain.SummaryRow  `json:"summary"`
	Days        []domain.DailyRecord `json:"days"`
}

// NewDocument assembles the document for a. stats may be nil when the series
// did not come from a file.
func NewDocument(runID string, a domain.Assessment, stats *ingest.Stats) Document {
	counts := make(map[string]int, 3)
	for state, n := range a.StateCounts() {
		counts[state.String()] = n
	}

	days := a.Days
	if days == nil {
		days = []domain.DailyRecord{}
	}

	doc := Document{
		RunID:       runID,
		Dataset:     a.Name,
		GeneratedAt: domain.Now(),
		Thresholds:  a.Thresholds,
		Input:       stats,
		StateCounts: counts,
		Summary:     domain.Summarize(days),
		Days:        days,
	}
	if peak, ok := a.Peak(); ok {
		row := domain.Summarize([]domain.DailyRecord{peak})[0]
		doc.Peak = &row
	}
	return doc
}

// NewRunID returns a fresh identifier for a batch run.
func NewRunID() string {
	return uuid.NewString()
}

// SafeLabel turns a dataset label into a file-name prefix.
func SafeLabel(label string) string {
	return strings.NewReplacer(" ", "_", "/", "-").Replace(label)
}

// Artifact is one rendered output file.
type Artifact struct {
	Key         string
	ContentType string
	Data        []byte
}

// Content types of the rendered artifacts.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
	ContentTypePNG  = "image/png"
)

// Render produces the summary CSV, JSON document and figure for a.
func Render(doc Document, a domain.Assessment) ([]Artifact, error) {
	prefix := SafeLabel(a.Name)

	var csvBuf bytes.Buffer
	if err := WriteSummaryCSV(&csvBuf, doc.Summary); err != nil {
		return nil, fmt.Errorf("render summary csv: %w", err)
	}

	jsonData, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render assessment json: %w", err)
	}

	var pngBuf bytes.Buffer
	if err := WriteFigure(&pngBuf, a); err != nil {
		return nil, fmt.Errorf("render figure: %w", err)
	}

	return []Artifact{
		{Key: prefix + "_summary.csv", ContentType: ContentTypeCSV, Data: csvBuf.Bytes()},
		{Key: prefix + "_assessment.json", ContentType: ContentTypeJSON, Data: jsonData},
		{Key: prefix + "_flood_risk.png", ContentType: ContentTypePNG, Data: pngBuf.Bytes()},
	}, nil
}
