package domain

import "time"

// hourlySeries builds n consecutive hours from start using fill for the
// observed values.
func hourlySeries(start time.Time, n int, fill func(i int) HourlyRecord) []HourlyRecord {
	hours := make([]HourlyRecord, n)
	for i := range hours {
		h := fill(i)
		h.Timestamp = start.Add(time.Duration(i) * time.Hour)
		hours[i] = h
	}
	return hours
}

func constant(rain, sm, q float64) func(int) HourlyRecord {
	return func(int) HourlyRecord {
		return HourlyRecord{RainfallMM: rain, SoilMoisture: sm, RiverDischargeM3S: q}
	}
}
