package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-age/internal/config"
)

// AgeBreakdown is the elapsed time between a birth and a reference instant.
//
// Years, Months and Days decompose the span on the calendar (time of day is
// ignored). Hours and TotalDays are floors of the exact elapsed time, so they
// include the time of day and can disagree with the calendar fields.
type AgeBreakdown struct {
	Years     int   `json:"years"`
	Months    int   `json:"months"`
	Days      int   `json:"days"`
	Hours     int64 `json:"hours"`
	TotalDays int64 `json:"total_days"`
}

// ComputeAge returns the age of someone born on birth, as observed at now.
// The birth instant is midnight of birth in now's location.
func ComputeAge(birth CalendarDate, now time.Time) (AgeBreakdown, error) {
	if !birth.Valid() {
		return AgeBreakdown{}, fmt.Errorf("%w: %s", ErrBirthDateUnparseable, birth)
	}
	return computeAge(birth, birth.In(now.Location()), now)
}

// ComputeAgeAt is ComputeAge for a birth instant that carries a time of day.
// The calendar fields use birth's own wall-clock date.
func ComputeAgeAt(birth, now time.Time) (AgeBreakdown, error) {
	if birth.After(now) {
		return AgeBreakdown{}, fmt.Errorf("%w: %s", ErrBirthDateFuture, birth.Format(time.RFC3339))
	}
	return computeAge(DateOf(birth), birth, now)
}

func computeAge(birth CalendarDate, birthInstant, now time.Time) (AgeBreakdown, error) {
	today := DateOf(now)
	if birth.After(today) {
		return AgeBreakdown{}, fmt.Errorf("%w: %s", ErrBirthDateFuture, birth)
	}

	years := today.Year - birth.Year
	months := int(today.Month) - int(birth.Month)
	days := today.Day - birth.Day

	if months < 0 || (months == 0 && days < 0) {
		years--
		months += config.MonthsPerYear
	}

	if days < 0 {
		// Borrow the month before today's. A birth day far enough past that
		// month's end (Jan 31 seen from March 1st) counts from its last day.
		dim := daysInPrecedingMonth(today.Year, today.Month)
		days = dim - birth.Day + today.Day
		if days < 0 {
			days = today.Day
		}
		months--
		if months < 0 {
			months += config.MonthsPerYear
			years--
		}
	}

	seconds := elapsedSeconds(birthInstant, now)

	return AgeBreakdown{
		Years:     years,
		Months:    months,
		Days:      days,
		Hours:     seconds / config.SecondsPerHour,
		TotalDays: seconds / config.SecondsPerDay,
	}, nil
}

// elapsedSeconds floors now-from to whole seconds without going through
// time.Duration, which saturates after ~292 years.
func elapsedSeconds(from, to time.Time) int64 {
	s := to.Unix() - from.Unix()
	if to.Nanosecond() < from.Nanosecond() {
		s--
	}
	if s < 0 {
		return 0
	}
	return s
}
