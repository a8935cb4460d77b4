package pipeline

import (
	"context"
	"io"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/ingest"
	"github.com/couchcryptid/flood-risk-etl/internal/report"
)

// Service runs single uploaded datasets through a Pipeline for
// request/response callers such as the HTTP adapter.
type Service struct {
	pipeline   *Pipeline
	loader     *ingest.Loader
	thresholds domain.Thresholds
}

// NewService creates a Service. th is reported back to callers and must be
// the calibration the pipeline's assessor uses.
func NewService(p *Pipeline, loader *ingest.Loader, th domain.Thresholds) *Service {
	return &Service{pipeline: p, loader: loader, thresholds: th}
}

// Assess parses CSV from r, assesses it and returns the JSON document.
// Configured loaders run as in a batch.
func (s *Service) Assess(ctx context.Context, name string, r io.Reader) (report.Document, error) {
	res := s.pipeline.Process(ctx, report.NewRunID(), NewReaderSource(name, r, s.loader))
	return res.Document, res.Err
}

// Thresholds returns the active calibration.
func (s *Service) Thresholds() domain.Thresholds {
	return s.thresholds
}
