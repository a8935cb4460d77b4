package domain

// ClassifyCompound flags high-rain, saturated and compound days and fills
// their streak counters. It writes only the classification fields of days.
func ClassifyCompound(days []DailyRecord, th Thresholds) {
	for i := range days {
		days[i].HighRainDay = days[i].DailyCFL > th.HighRainDailyCFL
		days[i].SaturatedDay = days[i].DailyPSe > th.SaturatedDailyPSe
		days[i].Compound = days[i].HighRainDay && days[i].SaturatedDay
	}

	highRain := streaksOf(days, func(d DailyRecord) bool { return d.HighRainDay })
	saturated := streaksOf(days, func(d DailyRecord) bool { return d.SaturatedDay })
	compound := streaksOf(days, func(d DailyRecord) bool { return d.Compound })
	for i := range days {
		days[i].ConsecutiveHighRainDays = highRain[i]
		days[i].ConsecutiveSaturatedDays = saturated[i]
		days[i].ConsecutiveCompoundCycles = compound[i]
	}
}
