package engine

import (
	"math"

	"github.com/tartampluch/go-age/internal/config"
)

// FunFacts are lifetime estimates derived from the number of days lived.
type FunFacts struct {
	Heartbeats int64 `json:"heartbeats"`
	Breaths    int64 `json:"breaths"`
	Steps      int64 `json:"steps"`
}

// ComputeFunFacts applies the fixed per-minute and per-day rates to totalDays.
// Results saturate at the int64 limits instead of wrapping around.
func ComputeFunFacts(totalDays int64) FunFacts {
	totalMinutes := mulSaturated(totalDays, config.HoursPerDay*config.MinutesPerHour)

	return FunFacts{
		Heartbeats: mulSaturated(totalMinutes, config.HeartbeatsPerMinute),
		Breaths:    mulSaturated(totalMinutes, config.BreathsPerMinute),
		Steps:      mulSaturated(totalDays, config.StepsPerDay),
	}
}

// mulSaturated multiplies a by a positive rate, clamping on overflow.
func mulSaturated(a, rate int64) int64 {
	switch {
	case a > math.MaxInt64/rate:
		return math.MaxInt64
	case a < math.MinInt64/rate:
		return math.MinInt64
	}
	return a * rate
}
