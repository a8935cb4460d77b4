package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveFloodDriver(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name    string
		rec     HourlyRecord
		wantEFD float64
		wantCFL float64
		wantPSe float64
	}{
		{"dry catchment", HourlyRecord{SoilMoisture: 0.5}, 25, 0, 0},
		{"exactly baseline", HourlyRecord{RainfallMM: 5, SoilMoisture: 0.5}, 30, 0, 0},
		{"heavy rain", HourlyRecord{RainfallMM: 20, SoilMoisture: 0.5}, 45, 15, 0},
		{"saturated with flow", HourlyRecord{RainfallMM: 2, SoilMoisture: 0.9, RiverDischargeM3S: 1000}, 48, 18, 0.1},
		{"at saturation threshold", HourlyRecord{SoilMoisture: 0.8}, 40, 10, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EnrichHour(tc.rec, th)
			assert.InDelta(t, tc.wantEFD, got.EFD, 1e-9)
			assert.InDelta(t, tc.wantCFL, got.CFLHour, 1e-9)
			assert.InDelta(t, tc.wantPSe, got.PSeHour, 1e-9)
		})
	}
}

func TestEnrichHours_DeterministicAndNonMutating(t *testing.T) {
	th := DefaultThresholds()
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	hours := []HourlyRecord{
		{Timestamp: start, RainfallMM: 12.5, SoilMoisture: 0.83, RiverDischargeM3S: 420},
		{Timestamp: start.Add(time.Hour), RainfallMM: 0, SoilMoisture: 0.81, RiverDischargeM3S: 410},
	}
	original := append([]HourlyRecord(nil), hours...)

	first := EnrichHours(hours, th)
	second := EnrichHours(hours, th)

	assert.Equal(t, first, second)
	assert.Equal(t, original, hours)
	assert.Equal(t, hours[0], first[0].HourlyRecord)
}

func TestEnrichHour_CustomWeights(t *testing.T) {
	th := DefaultThresholds()
	th.SoilMoistureWeight = 10
	th.DischargeWeight = 0.01
	th.BaselineFlood = 5

	got := EnrichHour(HourlyRecord{RainfallMM: 1, SoilMoisture: 0.5, RiverDischargeM3S: 100}, th)
	assert.InDelta(t, 7.0, got.EFD, 1e-9)
	assert.InDelta(t, 2.0, got.CFLHour, 1e-9)
}
