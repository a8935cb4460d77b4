package domain

import "math"

// SummaryRow is the display projection of a daily record. Values are rounded
// for presentation only; the daily records keep full precision.
type SummaryRow struct {
	Date           Date      `json:"date"`
	DailyCFL       float64   `json:"daily_CFL"`
	DailyPSe       float64   `json:"daily_PSe"`
	Compound       bool      `json:"compound"`
	RiskState      RiskState `json:"risk_state"`
	RiskMultiplier float64   `json:"risk_multiplier"`
}

// Summarize projects days onto summary rows: CFL to 2 decimals, PSe and the
// multiplier to 3.
func Summarize(days []DailyRecord) []SummaryRow {
	rows := make([]SummaryRow, len(days))
	for i, d := range days {
		rows[i] = SummaryRow{
			Date:           d.Date,
			DailyCFL:       round(d.DailyCFL, 2),
			DailyPSe:       round(d.DailyPSe, 3),
			Compound:       d.Compound,
			RiskState:      d.RiskState,
			RiskMultiplier: round(d.RiskMultiplier, 3),
		}
	}
	return rows
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
