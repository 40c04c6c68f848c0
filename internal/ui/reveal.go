package ui

import (
	"math"
	"time"

	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
)

// RevealStep schedules one result field: after Delay, Field counts up to Target.
type RevealStep struct {
	Delay  time.Duration
	Field  string
	Target int64
}

// RevealPlan orders the result fields for the staggered display. The headline
// comes first, fun facts last, each config.RevealStagger after the previous one.
func RevealPlan(age engine.AgeBreakdown, facts engine.FunFacts) []RevealStep {
	fields := []struct {
		name  string
		value int64
	}{
		{config.FieldAge, int64(age.Years)},
		{config.FieldYears, int64(age.Years)},
		{config.FieldMonths, int64(age.Months)},
		{config.FieldDays, int64(age.Days)},
		{config.FieldHours, age.Hours},
		{config.FieldHeartbeats, facts.Heartbeats},
		{config.FieldBreaths, facts.Breaths},
		{config.FieldSteps, facts.Steps},
	}

	plan := make([]RevealStep, len(fields))
	for i, f := range fields {
		plan[i] = RevealStep{
			Delay:  time.Duration(i) * config.RevealStagger,
			Field:  f.name,
			Target: f.value,
		}
	}
	return plan
}

// CountFrames lists the values shown while a number counts up from zero.
// Each tick adds target/(duration/tick); the last frame is always target.
func CountFrames(target int64, duration, tick time.Duration) []int64 {
	if target <= 0 || duration <= 0 || tick <= 0 {
		return []int64{target}
	}

	ticks := float64(duration) / float64(tick)
	increment := float64(target) / ticks
	limit := int(math.Ceil(ticks))

	frames := make([]int64, 0, limit)
	for k := 1; k < limit; k++ {
		v := float64(k) * increment
		if v >= float64(target) {
			break
		}
		frames = append(frames, int64(v))
	}
	return append(frames, target)
}

// frameAt maps an animation progress in [0, 1] to a frame.
func frameAt(frames []int64, progress float32) int64 {
	i := int(progress * float32(len(frames)))
	if i >= len(frames) {
		i = len(frames) - 1
	}
	if i < 0 {
		i = 0
	}
	return frames[i]
}
