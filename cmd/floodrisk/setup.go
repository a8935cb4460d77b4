package main

import (
	"context"
	"fmt"
	"log/slog"

	kafkaadapter "github.com/couchcryptid/flood-risk-etl/internal/adapter/kafka"
	s3adapter "github.com/couchcryptid/flood-risk-etl/internal/adapter/s3"
	"github.com/couchcryptid/flood-risk-etl/internal/config"
	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/observability"
	"github.com/couchcryptid/flood-risk-etl/internal/pipeline"
	"github.com/couchcryptid/flood-risk-etl/internal/report"
)

// env is the configuration shared by the commands that assess data.
type env struct {
	cfg        *config.Config
	logger     *slog.Logger
	thresholds domain.Thresholds
}

// loadEnv reads configuration and the calibration. thresholdsFile overrides
// THRESHOLDS_FILE when set.
func loadEnv(thresholdsFile string) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	if thresholdsFile == "" {
		thresholdsFile = cfg.ThresholdsFile
	}
	th, err := config.LoadThresholds(thresholdsFile)
	if err != nil {
		return nil, fmt.Errorf("load thresholds: %w", err)
	}
	return &env{cfg: cfg, logger: logger, thresholds: th}, nil
}

// sinks holds the configured loaders and releases their connections.
type sinks struct {
	loaders []pipeline.Loader
	kafka   *kafkaadapter.Writer
	// location describes where artifacts are written, for the final message.
	location string
}

func (s *sinks) Close(logger *slog.Logger) {
	if s.kafka == nil {
		return
	}
	if err := s.kafka.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
}

// buildSinks wires the artifact store and, when configured, the Kafka sink.
// withArtifacts is false for the HTTP service, which returns documents in
// the response instead of writing files.
func buildSinks(ctx context.Context, e *env, outputDir string, withArtifacts bool) (*sinks, error) {
	s := &sinks{}

	if withArtifacts {
		var store pipeline.ArtifactStore
		if e.cfg.S3Enabled() {
			s3store, err := s3adapter.NewStore(ctx, s3adapter.Config{
				Bucket:    e.cfg.S3Bucket,
				Prefix:    e.cfg.S3Prefix,
				Region:    e.cfg.S3Region,
				Endpoint:  e.cfg.S3Endpoint,
				AccessKey: e.cfg.S3AccessKey,
				SecretKey: e.cfg.S3SecretKey,
			})
			if err != nil {
				return nil, err
			}
			store = s3store
			s.location = "s3://" + e.cfg.S3Bucket + "/" + s3store.Key("")
			e.logger.Info("artifact store: s3", "bucket", e.cfg.S3Bucket, "prefix", e.cfg.S3Prefix)
		} else {
			local, err := report.NewLocalStore(outputDir)
			if err != nil {
				return nil, err
			}
			store = local
			s.location = outputDir
			e.logger.Info("artifact store: local", "dir", outputDir)
		}
		s.loaders = append(s.loaders, pipeline.NewArtifactLoader(store))
	}

	if e.cfg.KafkaEnabled() {
		s.kafka = kafkaadapter.NewWriter(e.cfg, e.logger)
		s.loaders = append(s.loaders, pipeline.NewPublishLoader(s.kafka))
		e.logger.Info("kafka sink enabled", "brokers", e.cfg.KafkaBrokers, "topic", e.cfg.KafkaSinkTopic)
	}
	return s, nil
}
