package domain

import "slices"

// Aggregate groups enriched hours by calendar day and computes the daily and
// running flood-load and saturation totals. Days are returned in calendar
// order; a day with no hours does not appear.
func Aggregate(hours []EnrichedHour, th Thresholds) []DailyRecord {
	index := make(map[Date]int)
	days := make([]DailyRecord, 0, len(hours)/24+1)

	for _, h := range hours {
		key := DayOf(h.Timestamp)
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, DailyRecord{Date: key, MaxSoilMoisture: h.SoilMoisture})
		}
		d := &days[i]
		d.Hours++
		d.DailyCFL += h.CFLHour
		d.DailyPSe += h.PSeHour
		d.MaxSoilMoisture = max(d.MaxSoilMoisture, h.SoilMoisture)
	}

	slices.SortFunc(days, func(a, b DailyRecord) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case b.Date.Before(a.Date):
			return 1
		default:
			return 0
		}
	})

	var cfl, pse float64
	for i := range days {
		cfl += days[i].DailyCFL
		pse += days[i].DailyPSe
		days[i].CumulativeCFL = cfl
		days[i].CumulativePSe = pse
		days[i].NoDryingDay = days[i].MaxSoilMoisture > th.SaturationThreshold
	}

	for i, n := range streaksOf(days, func(d DailyRecord) bool { return d.NoDryingDay }) {
		days[i].ConsecutiveNoDryingDays = n
	}
	return days
}
