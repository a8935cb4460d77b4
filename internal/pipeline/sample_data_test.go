package pipeline_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/ingest"
	"github.com/couchcryptid/flood-risk-etl/internal/pipeline"
	"github.com/couchcryptid/flood-risk-etl/internal/report"
	"github.com/couchcryptid/flood-risk-etl/internal/sample"
)

func TestPipeline_WithSampleData(t *testing.T) {
	dir := t.TempDir()
	store, err := report.NewLocalStore(dir)
	require.NoError(t, err)

	var sources []pipeline.Extractor
	for _, sc := range sample.Scenarios() {
		sources = append(sources, pipeline.NewSampleSource(sc, sample.DefaultSeed))
	}

	p := newPipeline(newTestMetrics(), 3, pipeline.NewArtifactLoader(store))
	batch := p.Run(context.Background(), report.NewRunID(), sources)
	require.NoError(t, batch.Err())

	for i, sc := range sample.Scenarios() {
		res := batch.Results[i]
		assert.Equal(t, sc.Label, res.Dataset)
		assert.Len(t, res.Assessment.Days, sc.Days)

		prefix := report.SafeLabel(sc.Label)
		for _, suffix := range []string{"_summary.csv", "_assessment.json", "_flood_risk.png"} {
			assert.FileExists(t, filepath.Join(dir, prefix+suffix))
		}

		data, err := os.ReadFile(filepath.Join(dir, prefix+"_assessment.json"))
		require.NoError(t, err)
		var doc report.Document
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, batch.RunID, doc.RunID)
		assert.Equal(t, sc.Days*24, doc.Input.Rows)

		total := 0
		for _, n := range doc.StateCounts {
			total += n
		}
		assert.Equal(t, sc.Days, total)
	}
}

// Samples written to disk and read back must assess identically to the
// in-memory series.
func TestPipeline_SampleFileRoundTrip(t *testing.T) {
	sc, err := sample.Lookup("midwest")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), sc.File+".zst")
	require.NoError(t, ingest.WriteFile(path, sc.Generate(sample.DefaultSeed)))

	p := newPipeline(newTestMetrics(), 1)
	fromFile := p.Process(context.Background(), "run", pipeline.NewFileSource(path, ingest.NewLoader(discardLogger())))
	fromMemory := p.Process(context.Background(), "run", pipeline.NewSampleSource(sc, sample.DefaultSeed))
	require.NoError(t, fromFile.Err)
	require.NoError(t, fromMemory.Err)

	assert.Equal(t, "sample_midwest_flood", fromFile.Dataset)
	require.Len(t, fromFile.Assessment.Days, len(fromMemory.Assessment.Days))
	for i := range fromFile.Assessment.Days {
		got, want := fromFile.Assessment.Days[i], fromMemory.Assessment.Days[i]
		assert.Equal(t, want.RiskState, got.RiskState, "day %s", want.Date)
		assert.InDelta(t, want.DailyCFL, got.DailyCFL, 1e-6, "day %s", want.Date)
		assert.InDelta(t, want.RiskMultiplier, got.RiskMultiplier, 1e-6, "day %s", want.Date)
	}
	assert.Equal(t, domain.Stable, fromFile.Assessment.Days[0].RiskState)
}
