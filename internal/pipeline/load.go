package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/report"
)

// ArtifactStore persists rendered artifacts by key.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// ArtifactLoader renders the summary CSV, JSON document and figure and writes
// them to a store.
type ArtifactLoader struct {
	store ArtifactStore
}

// NewArtifactLoader creates an ArtifactLoader.
func NewArtifactLoader(store ArtifactStore) *ArtifactLoader {
	return &ArtifactLoader{store: store}
}

func (l *ArtifactLoader) Name() string { return "artifacts" }

func (l *ArtifactLoader) Load(ctx context.Context, doc report.Document, a domain.Assessment) error {
	artifacts, err := report.Render(doc, a)
	if err != nil {
		return err
	}
	for _, art := range artifacts {
		if err := l.store.Put(ctx, art.Key, art.Data, art.ContentType); err != nil {
			return fmt.Errorf("put %s: %w", art.Key, err)
		}
	}
	return nil
}

// DayPublisher sends daily records to a message broker.
type DayPublisher interface {
	PublishDays(ctx context.Context, runID, dataset string, days []domain.DailyRecord) error
}

// PublishLoader forwards each assessed day to a DayPublisher.
type PublishLoader struct {
	publisher DayPublisher
}

// NewPublishLoader creates a PublishLoader.
func NewPublishLoader(p DayPublisher) *PublishLoader {
	return &PublishLoader{publisher: p}
}

func (l *PublishLoader) Name() string { return "kafka" }

func (l *PublishLoader) Load(ctx context.Context, doc report.Document, a domain.Assessment) error {
	if len(a.Days) == 0 {
		return nil
	}
	return l.publisher.PublishDays(ctx, doc.RunID, a.Name, a.Days)
}
