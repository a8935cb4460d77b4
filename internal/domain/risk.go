package domain

import (
	"fmt"
	"math"
)

// RiskState orders a day's flood risk: Stable < Straining < Failure.
type RiskState int

const (
	Stable RiskState = iota
	Straining
	Failure
)

var riskStateNames = [...]string{"Stable", "Straining", "Failure"}

// riskStateColors are the display colours used by reports (green, amber, red).
var riskStateColors = [...]string{"#2ecc71", "#f39c12", "#e74c3c"}

func (s RiskState) valid() bool { return s >= Stable && s <= Failure }

func (s RiskState) String() string {
	if !s.valid() {
		return fmt.Sprintf("RiskState(%d)", int(s))
	}
	return riskStateNames[s]
}

// Color returns the hex colour for s.
func (s RiskState) Color() string {
	if !s.valid() {
		return "#7f8c8d"
	}
	return riskStateColors[s]
}

// MarshalText encodes s by name.
func (s RiskState) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("invalid risk state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *RiskState) UnmarshalText(b []byte) error {
	v, err := ParseRiskState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseRiskState returns the state with the given name.
func ParseRiskState(name string) (RiskState, error) {
	for i, n := range riskStateNames {
		if n == name {
			return RiskState(i), nil
		}
	}
	return Stable, fmt.Errorf("unknown risk state %q", name)
}

// ClassifyRisk maps one day's load, saturation excess and compound streak to
// a risk state. It is memoryless: the streak already carries all history.
// Failure is applied after Straining so it wins whenever both hold.
func ClassifyRisk(dailyCFL, dailyPSe float64, streak int, th Thresholds) RiskState {
	cfl, pse := orZero(dailyCFL), orZero(dailyPSe)

	state := Stable
	if cfl >= th.StrainingCFL || pse >= th.StrainingPSe || streak >= th.StrainingStreak {
		state = Straining
	}
	if cfl >= th.FailureCFL || pse >= th.FailurePSe || streak >= th.FailureStreak {
		state = Failure
	}
	return state
}

// RiskMultiplier is the continuous escalation score for a day. It is at least
// 1 and has no upper bound.
func RiskMultiplier(dailyCFL, dailyPSe float64, streak int, th Thresholds) float64 {
	return 1.0 +
		orZero(dailyCFL)/th.StrainingCFL +
		orZero(dailyPSe)/th.StrainingPSe +
		float64(streak)*th.StreakWeight
}

// AssignRisk fills the risk state and multiplier of every day.
func AssignRisk(days []DailyRecord, th Thresholds) {
	for i := range days {
		d := &days[i]
		d.RiskState = ClassifyRisk(d.DailyCFL, d.DailyPSe, d.ConsecutiveCompoundCycles, th)
		d.RiskMultiplier = RiskMultiplier(d.DailyCFL, d.DailyPSe, d.ConsecutiveCompoundCycles, th)
	}
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
