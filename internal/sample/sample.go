// Package sample synthesises hourly hydrological datasets for the three
// reference scenarios. Output is deterministic for a given seed.
package sample

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// DefaultSeed reproduces the published sample files.
const DefaultSeed uint64 = 42

// burst adds Gamma(Shape, Scale) rainfall to every hour of Days days starting
// at Day.
type burst struct {
	Day, Days    int
	Shape, Scale float64
}

func (b burst) dist(src rand.Source) distuv.Gamma {
	return distuv.Gamma{Alpha: b.Shape, Beta: 1 / b.Scale, Src: src}
}

// bucket is a first-order store: x[i] = decay*x[i-1] + gain*rain[i] + offset +
// N(0, noise), clipped to [lo, hi].
type bucket struct {
	Start, Decay, Gain, Offset, Noise, Lo, Hi float64
}

func (b bucket) step(prev, rain float64, rng *rand.Rand) float64 {
	v := b.Decay*prev + b.Gain*rain + b.Offset + b.Noise*rng.NormFloat64()
	return min(max(v, b.Lo), b.Hi)
}

// Scenario describes one synthetic catchment and its storm sequence.
type Scenario struct {
	Key   string
	Label string
	File  string
	Start time.Time
	Days  int

	baseRain    float64 // mean of the exponential background drizzle
	bursts      []burst
	soil        bucket
	discharge   bucket
	gwFactor    float64
	gwNoise     float64
	impervious  float64
	streamIndex uint64
}

var scenarios = []Scenario{
	{
		Key: "midwest", Label: "Midwest 2019", File: "sample_midwest_flood.csv",
		Start: time.Date(2019, time.March, 10, 0, 0, 0, 0, time.UTC), Days: 30,
		baseRain: 0.5,
		bursts: []burst{
			{Day: 5, Days: 5, Shape: 3, Scale: 4},
			{Day: 18, Days: 7, Shape: 4, Scale: 5},
		},
		soil:        bucket{Start: 0.45, Decay: 1, Gain: 0.004, Offset: -0.003, Noise: 0.002, Lo: 0.05, Hi: 0.99},
		discharge:   bucket{Start: 200, Decay: 0.92, Gain: 1.5, Noise: 5, Lo: 50, Hi: math.Inf(1)},
		gwFactor:    0.85,
		gwNoise:     0.02,
		impervious:  0.22,
		streamIndex: 1,
	},
	{
		Key: "ahr", Label: "Europe 2021 Ahr", File: "sample_europe_2021_ahr.csv",
		Start: time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC), Days: 21,
		baseRain: 0.3,
		bursts: []burst{
			{Day: 11, Days: 3, Shape: 8, Scale: 10},
			{Day: 8, Days: 3, Shape: 3, Scale: 5},
		},
		soil:        bucket{Start: 0.60, Decay: 1, Gain: 0.005, Offset: -0.002, Noise: 0.001, Lo: 0.10, Hi: 0.99},
		discharge:   bucket{Start: 80, Decay: 0.88, Gain: 4.0, Noise: 8, Lo: 10, Hi: math.Inf(1)},
		gwFactor:    0.9,
		gwNoise:     0.015,
		impervious:  0.15,
		streamIndex: 2,
	},
	{
		Key: "future", Label: "Future Intensified", File: "sample_future_intensified_precip.csv",
		Start: time.Date(2055, time.June, 1, 0, 0, 0, 0, time.UTC), Days: 45,
		baseRain: 0.4,
		bursts: []burst{
			{Day: 5, Days: 2, Shape: 10, Scale: 8},
			{Day: 11, Days: 2, Shape: 10, Scale: 8},
			{Day: 19, Days: 2, Shape: 10, Scale: 8},
			{Day: 27, Days: 2, Shape: 10, Scale: 8},
			{Day: 36, Days: 2, Shape: 10, Scale: 8},
		},
		soil:        bucket{Start: 0.55, Decay: 1, Gain: 0.006, Offset: -0.0015, Noise: 0.002, Lo: 0.15, Hi: 0.99},
		discharge:   bucket{Start: 120, Decay: 0.90, Gain: 2.5, Noise: 6, Lo: 30, Hi: math.Inf(1)},
		gwFactor:    0.88,
		gwNoise:     0.02,
		impervious:  0.35,
		streamIndex: 3,
	},
}

// Scenarios returns the registered scenarios in their canonical order.
func Scenarios() []Scenario {
	return slices.Clone(scenarios)
}

// Keys returns the scenario keys in canonical order.
func Keys() []string {
	keys := make([]string, len(scenarios))
	for i, s := range scenarios {
		keys[i] = s.Key
	}
	return keys
}

// Lookup finds a scenario by key.
func Lookup(key string) (Scenario, error) {
	for _, s := range scenarios {
		if s.Key == key {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("unknown dataset %q (want one of %v)", key, Keys())
}

// Generate synthesises the scenario's hourly series. Each scenario draws from
// its own stream so adding or reordering scenarios does not change the others.
func (s Scenario) Generate(seed uint64) domain.Series {
	rng := rand.New(rand.NewPCG(seed, s.streamIndex))
	n := s.Days * 24

	drizzle := distuv.Exponential{Rate: 1 / s.baseRain, Src: rng}
	rain := make([]float64, n)
	for i := range rain {
		rain[i] = drizzle.Rand()
	}
	for _, b := range s.bursts {
		storm := b.dist(rng)
		for i := b.Day * 24; i < (b.Day+b.Days)*24 && i < n; i++ {
			rain[i] += storm.Rand()
		}
	}

	soil := make([]float64, n)
	flow := make([]float64, n)
	soil[0], flow[0] = s.soil.Start, s.discharge.Start
	for i := 1; i < n; i++ {
		soil[i] = s.soil.step(soil[i-1], rain[i], rng)
		flow[i] = s.discharge.step(flow[i-1], rain[i], rng)
	}

	hours := make([]domain.HourlyRecord, n)
	for i := range hours {
		sm := round(soil[i], 4)
		gw := round(min(max(soil[i]*s.gwFactor+s.gwNoise*rng.NormFloat64(), 0), 1), 4)
		imp := s.impervious
		hours[i] = domain.HourlyRecord{
			Timestamp:          s.Start.Add(time.Duration(i) * time.Hour),
			RainfallMM:         round(rain[i], 3),
			SoilMoisture:       sm,
			RiverDischargeM3S:  round(flow[i], 2),
			GroundwaterIndex:   &gw,
			ImperviousFraction: &imp,
		}
	}

	columns := append(slices.Clone(domain.RequiredColumns), domain.OptionalColumns...)
	return domain.Series{Name: s.Label, Columns: columns, Hours: hours}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
