package pipeline

import (
	"context"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// ThresholdAssessor implements Assessor with a fixed calibration.
type ThresholdAssessor struct {
	thresholds domain.Thresholds
}

// NewAssessor creates a ThresholdAssessor.
func NewAssessor(th domain.Thresholds) *ThresholdAssessor {
	return &ThresholdAssessor{thresholds: th}
}

// Thresholds returns the calibration in use.
func (a *ThresholdAssessor) Thresholds() domain.Thresholds {
	return a.thresholds
}

func (a *ThresholdAssessor) Assess(ctx context.Context, s domain.Series) (domain.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Assessment{}, err
	}
	return domain.Assess(s, a.thresholds)
}
