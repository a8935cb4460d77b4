package domain

// EffectiveFloodDriver blends rainfall, soil moisture and discharge into the
// hourly EFD signal.
func EffectiveFloodDriver(h HourlyRecord, th Thresholds) float64 {
	return h.RainfallMM + th.SoilMoistureWeight*h.SoilMoisture + th.DischargeWeight*h.RiverDischargeM3S
}

// FloodLoad is the part of an hour's EFD above the flood baseline.
func FloodLoad(efd float64, th Thresholds) float64 {
	return max(efd-th.BaselineFlood, 0)
}

// SaturationExcess is the part of an hour's soil moisture above the
// saturation threshold.
func SaturationExcess(soilMoisture float64, th Thresholds) float64 {
	return max(soilMoisture-th.SaturationThreshold, 0)
}

// EnrichHour computes EFD, CFL_hour and PSe_hour for one record.
func EnrichHour(h HourlyRecord, th Thresholds) EnrichedHour {
	efd := EffectiveFloodDriver(h, th)
	return EnrichedHour{
		HourlyRecord: h,
		EFD:          efd,
		CFLHour:      FloodLoad(efd, th),
		PSeHour:      SaturationExcess(h.SoilMoisture, th),
	}
}

// EnrichHours returns a new slice with every record enriched. The input is
// not modified.
func EnrichHours(hours []HourlyRecord, th Thresholds) []EnrichedHour {
	out := make([]EnrichedHour, len(hours))
	for i, h := range hours {
		out[i] = EnrichHour(h, th)
	}
	return out
}
