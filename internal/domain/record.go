package domain

import (
	"fmt"
	"time"
)

// Column names of the hourly input table.
const (
	ColumnTimestamp          = "timestamp"
	ColumnRainfall           = "rainfall_mm"
	ColumnSoilMoisture       = "soil_moisture"
	ColumnDischarge          = "river_discharge_m3s"
	ColumnGroundwater        = "groundwater_index"
	ColumnImperviousFraction = "impervious_fraction"
)

// RequiredColumns must all be present for a dataset to be assessed.
var RequiredColumns = []string{ColumnTimestamp, ColumnRainfall, ColumnSoilMoisture, ColumnDischarge}

// OptionalColumns are carried through when present.
var OptionalColumns = []string{ColumnGroundwater, ColumnImperviousFraction}

// HourlyRecord is one validated, gap-filled observation.
type HourlyRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	RainfallMM         float64   `json:"rainfall_mm"`
	SoilMoisture       float64   `json:"soil_moisture"`
	RiverDischargeM3S  float64   `json:"river_discharge_m3s"`
	GroundwaterIndex   *float64  `json:"groundwater_index,omitempty"`
	ImperviousFraction *float64  `json:"impervious_fraction,omitempty"`
}

// EnrichedHour is an HourlyRecord with its derived indicators appended.
type EnrichedHour struct {
	HourlyRecord
	EFD     float64 `json:"EFD"`
	CFLHour float64 `json:"CFL_hour"`
	PSeHour float64 `json:"PSe_hour"`
}

// Series is the hourly table handed over by the input provider. Columns lists
// the header of the source so the schema can be checked before any metric is
// computed.
type Series struct {
	Name    string
	Columns []string
	Hours   []HourlyRecord
}

// Date is a calendar day without a time or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar date of t as written in t's own location. No
// timezone conversion is applied, so an hour stamped 23:00+02:00 belongs to
// the same day as the rest of that local day.
func DayOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return DayOf(d.Time().AddDate(0, 0, 1))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes d as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses YYYY-MM-DD.
func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(time.DateOnly, string(b))
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	*d = DayOf(t)
	return nil
}

// DailyRecord is one calendar day of the assessment. Fields are filled by
// three stages in order: aggregation, compound classification, risk
// assignment. Later stages only add fields.
type DailyRecord struct {
	Date  Date `json:"date"`
	Hours int  `json:"hours"`

	// Aggregation.
	DailyCFL                float64 `json:"daily_CFL"`
	CumulativeCFL           float64 `json:"cumulative_CFL"`
	DailyPSe                float64 `json:"daily_PSe"`
	CumulativePSe           float64 `json:"cumulative_PSe"`
	MaxSoilMoisture         float64 `json:"max_sm_day"`
	NoDryingDay             bool    `json:"no_drying_day"`
	ConsecutiveNoDryingDays int     `json:"consecutive_no_drying_days"`

	// Compound classification.
	HighRainDay               bool `json:"high_rain_day"`
	SaturatedDay              bool `json:"saturated_day"`
	Compound                  bool `json:"compound"`
	ConsecutiveHighRainDays   int  `json:"consecutive_high_rain_days"`
	ConsecutiveSaturatedDays  int  `json:"consecutive_saturated_days"`
	ConsecutiveCompoundCycles int  `json:"consecutive_compound_cycles"`

	// Risk assignment.
	RiskState      RiskState `json:"risk_state"`
	RiskMultiplier float64   `json:"risk_multiplier"`
}

// Assessment is the full output of one dataset: the enriched hourly table and
// the classified daily table.
type Assessment struct {
	Name       string         `json:"name"`
	Thresholds Thresholds     `json:"thresholds"`
	Hours      []EnrichedHour `json:"-"`
	Days       []DailyRecord  `json:"days"`
}

// StateCounts returns the number of days in each risk state.
func (a Assessment) StateCounts() map[RiskState]int {
	counts := map[RiskState]int{Stable: 0, Straining: 0, Failure: 0}
	for _, d := range a.Days {
		counts[d.RiskState]++
	}
	return counts
}

// Peak returns the day with the highest risk multiplier. ok is false for an
// empty assessment.
func (a Assessment) Peak() (DailyRecord, bool) {
	if len(a.Days) == 0 {
		return DailyRecord{}, false
	}
	peak := a.Days[0]
	for _, d := range a.Days[1:] {
		if d.RiskMultiplier > peak.RiskMultiplier {
			peak = d
		}
	}
	return peak, true
}
