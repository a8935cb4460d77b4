package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/flood-risk-etl/internal/adapter/http"
	"github.com/couchcryptid/flood-risk-etl/internal/ingest"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
	"github.com/couchcryptid/flood-risk-etl/internal/pipeline"
	"github.com/couchcryptid/flood-risk-etl/internal/sample"
)

func newServeCmd() *cobra.Command {
	var thresholdsFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assessment API with health, readiness and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), thresholdsFile)
		},
	}
	cmd.Flags().StringVar(&thresholdsFile, "thresholds", "", "YAML threshold file (default THRESHOLDS_FILE)")
	return cmd
}

func serve(parent context.Context, thresholdsFile string) error {
	e, err := loadEnv(thresholdsFile)
	if err != nil {
		return err
	}
	logger := e.logger
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := buildSinks(ctx, e, e.cfg.OutputDir, false)
	if err != nil {
		return err
	}
	defer s.Close(logger)

	p := pipeline.New(pipeline.NewAssessor(e.thresholds), s.loaders, logger, metrics, e.cfg.Workers)
	svc := pipeline.NewService(p, ingest.NewLoader(logger), e.thresholds)
	srv := httpadapter.NewServer(e.cfg.HTTPAddr, p, svc, e.cfg.MaxUploadBytes, logger)

	// Start HTTP server. /readyz reports 503 until the warmup below succeeds.
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	warm, err := sample.Lookup("midwest")
	if err != nil {
		return err
	}
	if err := p.Warmup(ctx, pipeline.NewSampleSource(warm, sample.DefaultSeed)); err != nil {
		logger.Error("warmup failed", "error", err)
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		logger.Error("http server error", "error", serveErr)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}
