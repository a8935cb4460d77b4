package pipeline

import (
	"context"
	"io"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/ingest"
	"github.com/couchcryptid/flood-risk-etl/internal/sample"
)

// FileSource extracts a dataset from a CSV file, optionally zstd-compressed.
type FileSource struct {
	path   string
	loader *ingest.Loader
}

// NewFileSource creates a FileSource named after the file.
func NewFileSource(path string, loader *ingest.Loader) *FileSource {
	return &FileSource{path: path, loader: loader}
}

func (s *FileSource) Name() string { return ingest.SeriesName(s.path) }

func (s *FileSource) Extract(_ context.Context) (domain.Series, *ingest.Stats, error) {
	series, stats, err := s.loader.LoadFile(s.path)
	if err != nil {
		return domain.Series{}, nil, err
	}
	return series, &stats, nil
}

// ReaderSource extracts a dataset from an in-memory CSV stream such as an
// HTTP request body.
type ReaderSource struct {
	name   string
	r      io.Reader
	loader *ingest.Loader
}

// NewReaderSource creates a ReaderSource with the given dataset name.
func NewReaderSource(name string, r io.Reader, loader *ingest.Loader) *ReaderSource {
	return &ReaderSource{name: name, r: r, loader: loader}
}

func (s *ReaderSource) Name() string { return s.name }

func (s *ReaderSource) Extract(_ context.Context) (domain.Series, *ingest.Stats, error) {
	series, stats, err := s.loader.Parse(s.r, s.name)
	if err != nil {
		return domain.Series{}, nil, err
	}
	return series, &stats, nil
}

// SampleSource synthesises one of the built-in scenarios.
type SampleSource struct {
	scenario sample.Scenario
	seed     uint64
}

// NewSampleSource creates a SampleSource for scenario.
func NewSampleSource(scenario sample.Scenario, seed uint64) *SampleSource {
	return &SampleSource{scenario: scenario, seed: seed}
}

func (s *SampleSource) Name() string { return s.scenario.Label }

func (s *SampleSource) Extract(ctx context.Context) (domain.Series, *ingest.Stats, error) {
	if err := ctx.Err(); err != nil {
		return domain.Series{}, nil, err
	}
	series := s.scenario.Generate(s.seed)
	stats := &ingest.Stats{Rows: len(series.Hours)}
	if n := len(series.Hours); n > 0 {
		stats.First = series.Hours[0].Timestamp
		stats.Last = series.Hours[n-1].Timestamp
	}
	return series, stats, nil
}
