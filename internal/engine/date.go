package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-age/internal/config"
)

// ErrInvalidInput is the root of every rejection made by the age calculator.
// Callers match it with errors.Is; the wrapped errors below tell the UI which
// message to show.
var ErrInvalidInput = errors.New(config.ErrInvalidInput)

var (
	ErrBirthDateMissing     = fmt.Errorf("%w: %s", ErrInvalidInput, config.ErrBirthMissing)
	ErrBirthDateUnparseable = fmt.Errorf("%w: %s", ErrInvalidInput, config.ErrBirthUnparseable)
	ErrBirthDateFuture      = fmt.Errorf("%w: %s", ErrInvalidInput, config.ErrBirthFuture)
)

// CalendarDate is a Gregorian calendar day with no time-of-day component.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate builds a date and rejects days that do not exist (e.g. Feb 30).
func NewCalendarDate(year int, month time.Month, day int) (CalendarDate, error) {
	d := CalendarDate{Year: year, Month: month, Day: day}
	if !d.Valid() {
		return CalendarDate{}, fmt.Errorf("%w: %s", ErrBirthDateUnparseable, d)
	}
	return d, nil
}

// DateOf returns the wall-clock date of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// Valid reports whether the triple names a real day. time.Date normalizes
// overflowing fields, so a round trip exposes impossible dates.
func (d CalendarDate) Valid() bool {
	return DateOf(d.In(time.UTC)) == d
}

// In returns midnight of d in loc.
func (d CalendarDate) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// After reports whether d is strictly later than o.
func (d CalendarDate) After(o CalendarDate) bool {
	return d.compare(o) > 0
}

// Before reports whether d is strictly earlier than o.
func (d CalendarDate) Before(o CalendarDate) bool {
	return d.compare(o) < 0
}

func (d CalendarDate) compare(o CalendarDate) int {
	switch {
	case d.Year != o.Year:
		return d.Year - o.Year
	case d.Month != o.Month:
		return int(d.Month) - int(o.Month)
	default:
		return d.Day - o.Day
	}
}

// AddDays moves d by n calendar days.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// DaysSince counts calendar days from o to d. Unix seconds are used because
// time.Duration cannot represent spans longer than ~292 years.
func (d CalendarDate) DaysSince(o CalendarDate) int64 {
	return (d.In(time.UTC).Unix() - o.In(time.UTC).Unix()) / config.SecondsPerDay
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// daysInPrecedingMonth returns the length of the month before (year, month).
// Day 0 of a month is the last day of the previous one, which also carries
// January back to December of the previous year.
func daysInPrecedingMonth(year int, month time.Month) int {
	return time.Date(year, month, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDate reads a birth date typed by a user or found in a vCard.
// Only layouts that carry a year are accepted.
func ParseDate(value string) (CalendarDate, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return CalendarDate{}, ErrBirthDateMissing
	}

	formats := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, value); err == nil {
			return DateOf(t), nil
		}
	}

	return CalendarDate{}, fmt.Errorf("%w: %q", ErrBirthDateUnparseable, value)
}

// ValidateBirthDate applies the calculator's input rules: the value must be
// present, parseable and not later than today's date in now's location.
func ValidateBirthDate(value string, now time.Time) (CalendarDate, error) {
	d, err := ParseDate(value)
	if err != nil {
		return CalendarDate{}, err
	}
	if d.After(DateOf(now)) {
		return CalendarDate{}, fmt.Errorf("%w: %s", ErrBirthDateFuture, d)
	}
	return d, nil
}
