package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// ThresholdsEnvPrefix prefixes environment overrides of the calibration, for
// example FLOODRISK_FAILURE_CFL.
const ThresholdsEnvPrefix = "FLOODRISK"

// LoadThresholds resolves the calibration: built-in defaults, then the YAML
// file at path (skipped when path is empty), then FLOODRISK_* environment
// overrides. The result is validated so every failure cut-off lies strictly
// above its straining counterpart.
func LoadThresholds(path string) (domain.Thresholds, error) {
	th := domain.DefaultThresholds()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Thresholds{}, &ConfigError{Type: ErrParsing, Message: "reading thresholds file " + path, Err: err}
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&th); err != nil && !errors.Is(err, io.EOF) {
			return domain.Thresholds{}, &ConfigError{Type: ErrParsing, Message: "parsing thresholds file " + path, Err: err}
		}
	}

	if err := envconfig.Process(ThresholdsEnvPrefix, &th); err != nil {
		return domain.Thresholds{}, &ConfigError{Type: ErrParsing, Message: "failed to process threshold overrides", Err: err}
	}

	if err := ValidateThresholds(th); err != nil {
		return domain.Thresholds{}, err
	}
	return th, nil
}

// ValidateThresholds checks th against its struct tags.
func ValidateThresholds(th domain.Thresholds) error {
	if err := validator.New().Struct(th); err != nil {
		return &ConfigError{Type: ErrValidation, Message: "threshold validation failed", Err: err}
	}
	return nil
}
