package engine

import "time"

// AgeEntry is one contact of the roster, ready for display.
type AgeEntry struct {
	// UID is a deterministic hash, stable across refreshes.
	UID string

	Name string

	// DateOfBirth is midnight of the birth date in the sync's location, or the
	// exact instant when the vCard carried a time of day.
	DateOfBirth time.Time

	// YearKnown is false for vCard values like --MM-DD. Age, Facts and the
	// milestone fields are zero in that case.
	YearKnown bool

	Age   AgeBreakdown
	Facts FunFacts

	// NextBirthday is today or the next anniversary; AgeNext is the age turned then.
	NextBirthday time.Time
	AgeNext      int

	// NextMilestone is the next day (today included) on which the number of
	// days alive is a multiple of config.MilestoneDayStep.
	NextMilestone time.Time
	MilestoneDays int64
}
