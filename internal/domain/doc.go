// Package domain computes compound inland flood-risk indicators from hourly
// hydrological observations and classifies each calendar day into a risk state.
//
// # Input
//
// One row per hour, strictly increasing timestamps:
//
//	rainfall_mm          precipitation in the hour, >= 0
//	soil_moisture        volumetric fraction of saturation, [0, 1]
//	river_discharge_m3s  gauged discharge in cubic metres per second, >= 0
//
// groundwater_index and impervious_fraction are optional [0, 1] indicators that
// are carried through to the output but do not enter any formula.
//
// # Hourly indicators
//
//	EFD      = rainfall_mm + 50 * soil_moisture + 0.001 * river_discharge_m3s
//	CFL_hour = max(EFD - 30, 0)
//	PSe_hour = max(soil_moisture - 0.80, 0)
//
// EFD (Effective Flood Driver) blends the three forcings into one severity
// signal. The 50 and 0.001 weights put a saturated catchment (~50) and a
// 10,000 m3/s river (~10) on the same scale as an hour of heavy rain.
//
// # Daily indicators
//
// Hours are grouped by the calendar date of their own timestamp, with no
// timezone conversion (see [DayOf]). Calendar days with no observations are
// omitted rather than synthesised as zero.
//
//	daily_CFL / cumulative_CFL   Cumulative Flood Load, sum of CFL_hour
//	daily_PSe / cumulative_PSe   Persistent Saturation Excess, sum of PSe_hour
//	max_sm_day                   peak soil moisture of the day
//	no_drying_day                max_sm_day > 0.80
//	high_rain_day                daily_CFL > 60
//	saturated_day                daily_PSe > 4
//	compound                     high_rain_day && saturated_day
//
// Each boolean flag has a streak counter: the number of consecutive days,
// ending today, on which the flag held (see [Streaks]). A calendar day with
// no hours is left out of the output but still breaks every streak.
//
// # Risk states
//
//	Stable     none of the conditions below
//	Straining  daily_CFL >= 80  || daily_PSe >= 4 || compound streak >= 2
//	Failure    daily_CFL >= 160 || daily_PSe >= 8 || compound streak >= 4
//
// Failure wins over Straining. The risk multiplier is an unbounded
// continuous score:
//
//	1 + daily_CFL/80 + daily_PSe/4 + 0.5 * compound streak
//
// Every constant above lives in [Thresholds] so a basin can be recalibrated
// without code changes.
package domain
