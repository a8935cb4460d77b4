package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string `validate:"required"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	LogFormat       string `validate:"oneof=json text"`
	ShutdownTimeout time.Duration

	OutputDir      string `validate:"required"`
	Workers        int    `validate:"min=1,max=64"`
	MaxUploadBytes int64  `validate:"gt=0"`
	ThresholdsFile string

	// Kafka daily-record sink; disabled when no brokers are configured.
	KafkaBrokers   []string
	KafkaSinkTopic string `validate:"required_with=KafkaBrokers"`

	// S3 artifact store; disabled when S3Bucket is empty.
	S3Bucket   string
	S3Prefix   string
	S3Region   string `validate:"required_with=S3Bucket"`
	S3Endpoint string `validate:"omitempty,url"`

	// Static credentials for MinIO; the AWS default chain is used when empty.
	S3AccessKey string
	S3SecretKey string `validate:"required_with=S3AccessKey"`

	// Pushgateway for batch runs; disabled when empty.
	PushgatewayURL string `validate:"omitempty,url"`
}

// KafkaEnabled reports whether daily records are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// S3Enabled reports whether artifacts go to S3 instead of OutputDir.
func (c *Config) S3Enabled() bool { return c.S3Bucket != "" }

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is read first; variables
// already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, &ConfigError{Type: ErrParsing, Message: "invalid shutdown timeout", Err: err}
	}

	workers, err := envInt("WORKERS", 4)
	if err != nil {
		return nil, err
	}
	maxUpload, err := envInt("MAX_UPLOAD_BYTES", 32<<20)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OutputDir:      sharedcfg.EnvOrDefault("OUTPUT_DIR", "output"),
		Workers:        workers,
		MaxUploadBytes: int64(maxUpload),
		ThresholdsFile: os.Getenv("THRESHOLDS_FILE"),

		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "flood-risk-daily"),

		S3Bucket:   os.Getenv("S3_BUCKET"),
		S3Prefix:   os.Getenv("S3_PREFIX"),
		S3Region:   sharedcfg.EnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint: os.Getenv("S3_ENDPOINT"),

		S3AccessKey: os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey: os.Getenv("S3_SECRET_ACCESS_KEY"),

		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{Type: ErrValidation, Message: "configuration validation failed", Err: err}
	}
	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ConfigError{Type: ErrParsing, Message: fmt.Sprintf("invalid %s %q", key, s), Err: err}
	}
	return n, nil
}
