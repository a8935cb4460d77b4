package sample

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

func TestLookup(t *testing.T) {
	s, err := Lookup("ahr")
	require.NoError(t, err)
	assert.Equal(t, "Europe 2021 Ahr", s.Label)
	assert.Equal(t, 21, s.Days)

	_, err = Lookup("atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "atlantis")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"midwest", "ahr", "future"}, Keys())
}

func TestGenerate_Shape(t *testing.T) {
	for _, sc := range Scenarios() {
		t.Run(sc.Key, func(t *testing.T) {
			s := sc.Generate(DefaultSeed)

			assert.Equal(t, sc.Label, s.Name)
			require.Len(t, s.Hours, sc.Days*24)
			assert.Equal(t, sc.Start, s.Hours[0].Timestamp)
			require.NoError(t, domain.CheckSchema(s.Columns))
			require.NoError(t, domain.CheckOrder(s.Hours))

			for i, h := range s.Hours {
				if i > 0 {
					require.Equal(t, time.Hour, h.Timestamp.Sub(s.Hours[i-1].Timestamp))
				}
				require.GreaterOrEqual(t, h.RainfallMM, 0.0)
				require.GreaterOrEqual(t, h.SoilMoisture, sc.soil.Lo)
				require.LessOrEqual(t, h.SoilMoisture, sc.soil.Hi)
				require.GreaterOrEqual(t, h.RiverDischargeM3S, sc.discharge.Lo)
				require.NotNil(t, h.GroundwaterIndex)
				require.GreaterOrEqual(t, *h.GroundwaterIndex, 0.0)
				require.LessOrEqual(t, *h.GroundwaterIndex, 1.0)
				require.NotNil(t, h.ImperviousFraction)
				require.InDelta(t, sc.impervious, *h.ImperviousFraction, 1e-12)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	sc, err := Lookup("midwest")
	require.NoError(t, err)

	a := sc.Generate(7)
	b := sc.Generate(7)
	c := sc.Generate(8)

	assert.Equal(t, a.Hours, b.Hours)
	assert.NotEqual(t, a.Hours, c.Hours)
}

func TestGenerate_BurstsRaiseRainfall(t *testing.T) {
	sc, err := Lookup("future")
	require.NoError(t, err)
	s := sc.Generate(DefaultSeed)

	dayTotal := func(day int) float64 {
		var sum float64
		for _, h := range s.Hours[day*24 : (day+1)*24] {
			sum += h.RainfallMM
		}
		return sum
	}

	// Day 2 is background drizzle only; day 5 carries a Gamma(10, 8) burst.
	assert.Greater(t, dayTotal(5), 10*dayTotal(2))
}

func TestGenerate_AhrReachesFailure(t *testing.T) {
	sc, err := Lookup("ahr")
	require.NoError(t, err)

	a, err := domain.Assess(sc.Generate(DefaultSeed), domain.DefaultThresholds())
	require.NoError(t, err)

	counts := a.StateCounts()
	assert.Positive(t, counts[domain.Failure])
	assert.Len(t, a.Days, sc.Days)
}

func TestBurst_Mean(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, tc := range []struct{ shape, scale float64 }{
		{3, 4}, {8, 10}, {0.5, 2},
	} {
		dist := burst{Shape: tc.shape, Scale: tc.scale}.dist(rng)
		assert.InDelta(t, tc.shape*tc.scale, dist.Mean(), 1e-9)

		const n = 20000
		var sum float64
		for range n {
			v := dist.Rand()
			require.False(t, math.IsNaN(v))
			require.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		want := tc.shape * tc.scale
		assert.InDelta(t, want, sum/n, 0.05*want, "shape=%v scale=%v", tc.shape, tc.scale)
	}
}
