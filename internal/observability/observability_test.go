package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info", "json").Info("hello", "dataset", "ahr")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "ahr", line["dataset"])

	buf.Reset()
	newLogger(&buf, "info", "text").Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.level))
		})
	}

	var buf bytes.Buffer
	newLogger(&buf, "warn", "json").Info("dropped")
	assert.Empty(t, buf.String())
}

func TestMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.DatasetsProcessed.Inc()
	a.DaysByState.WithLabelValues("Failure").Add(3)

	assert.InDelta(t, 1, testutil.ToFloat64(a.DatasetsProcessed), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.DatasetsProcessed), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(a.DaysByState.WithLabelValues("Failure")), 0)
}

func TestPush(t *testing.T) {
	var gotPath string
	var gotBody string
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	m := NewMetricsForTesting()
	m.DatasetsProcessed.Add(2)

	require.NoError(t, m.Push(context.Background(), gw.URL, "floodrisk"))
	assert.Equal(t, "/metrics/job/floodrisk", gotPath)
	assert.Contains(t, gotBody, "flood_risk_datasets_processed_total")
}

func TestPush_Error(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gw.Close()

	err := NewMetricsForTesting().Push(context.Background(), gw.URL, "floodrisk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), gw.URL)
}
