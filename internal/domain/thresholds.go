package domain

// Thresholds is the single calibration shared by every stage of the
// assessment. The driver calculator, aggregator, compound classifier and risk
// state machine all read from the same value so their cut-offs cannot drift.
type Thresholds struct {
	// Driver calculator.
	BaselineFlood       float64 `json:"baseline_flood" yaml:"baseline_flood" envconfig:"BASELINE_FLOOD" validate:"gt=0"`
	SaturationThreshold float64 `json:"saturation_threshold" yaml:"saturation_threshold" envconfig:"SATURATION_THRESHOLD" validate:"gt=0,lt=1"`
	SoilMoistureWeight  float64 `json:"soil_moisture_weight" yaml:"soil_moisture_weight" envconfig:"SOIL_MOISTURE_WEIGHT" validate:"gte=0"`
	DischargeWeight     float64 `json:"discharge_weight" yaml:"discharge_weight" envconfig:"DISCHARGE_WEIGHT" validate:"gte=0"`

	// Compound classifier.
	HighRainDailyCFL  float64 `json:"high_rain_daily_cfl" yaml:"high_rain_daily_cfl" envconfig:"HIGH_RAIN_DAILY_CFL" validate:"gt=0"`
	SaturatedDailyPSe float64 `json:"saturated_daily_pse" yaml:"saturated_daily_pse" envconfig:"SATURATED_DAILY_PSE" validate:"gt=0"`

	// Risk state machine. StrainingCFL and StrainingPSe also normalise the
	// multiplier terms.
	StrainingCFL    float64 `json:"straining_cfl" yaml:"straining_cfl" envconfig:"STRAINING_CFL" validate:"gt=0"`
	StrainingPSe    float64 `json:"straining_pse" yaml:"straining_pse" envconfig:"STRAINING_PSE" validate:"gt=0"`
	StrainingStreak int     `json:"straining_streak" yaml:"straining_streak" envconfig:"STRAINING_STREAK" validate:"gte=1"`
	FailureCFL      float64 `json:"failure_cfl" yaml:"failure_cfl" envconfig:"FAILURE_CFL" validate:"gtfield=StrainingCFL"`
	FailurePSe      float64 `json:"failure_pse" yaml:"failure_pse" envconfig:"FAILURE_PSE" validate:"gtfield=StrainingPSe"`
	FailureStreak   int     `json:"failure_streak" yaml:"failure_streak" envconfig:"FAILURE_STREAK" validate:"gtfield=StrainingStreak"`
	StreakWeight    float64 `json:"streak_weight" yaml:"streak_weight" envconfig:"STREAK_WEIGHT" validate:"gte=0"`
}

// DefaultThresholds returns the reference calibration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BaselineFlood:       30.0,
		SaturationThreshold: 0.80,
		SoilMoistureWeight:  50.0,
		DischargeWeight:     0.001,

		HighRainDailyCFL:  60.0,
		SaturatedDailyPSe: 4.0,

		StrainingCFL:    80.0,
		StrainingPSe:    4.0,
		StrainingStreak: 2,
		FailureCFL:      160.0,
		FailurePSe:      8.0,
		FailureStreak:   4,
		StreakWeight:    0.5,
	}
}
