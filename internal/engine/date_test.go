package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-age/internal/engine"
)

func TestParseDate_Formats(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  engine.CalendarDate
	}{
		{"ISO8601", "1990-10-25", date(1990, time.October, 25)},
		{"Basic", "19901025", date(1990, time.October, 25)},
		{"RFC3339 keeps the written date", "1990-10-25T23:30:00-05:00", date(1990, time.October, 25)},
		{"UTC timestamp", "1990-10-25T08:00:00Z", date(1990, time.October, 25)},
		{"Surrounding spaces", "  2000-02-29 ", date(2000, time.February, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.ParseDate(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{"Empty", "", engine.ErrBirthDateMissing},
		{"Blank", "   ", engine.ErrBirthDateMissing},
		{"Garbage", "not-a-date", engine.ErrBirthDateUnparseable},
		{"Impossible day", "2023-02-29", engine.ErrBirthDateUnparseable},
		{"Year unknown", "--10-25", engine.ErrBirthDateUnparseable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ParseDate(tt.value)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, engine.ErrInvalidInput)
		})
	}
}

func TestValidateBirthDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 5, 0, 0, time.UTC)

	got, err := engine.ValidateBirthDate("2024-06-15", now)
	require.NoError(t, err, "today is a valid birth date")
	assert.Equal(t, date(2024, time.June, 15), got)

	_, err = engine.ValidateBirthDate("2024-06-16", now)
	assert.ErrorIs(t, err, engine.ErrBirthDateFuture)
	assert.ErrorIs(t, err, engine.ErrInvalidInput)

	_, err = engine.ValidateBirthDate("", now)
	assert.ErrorIs(t, err, engine.ErrBirthDateMissing)
}

func TestCalendarDate_Helpers(t *testing.T) {
	d := date(2024, time.February, 28)

	assert.True(t, d.Valid())
	assert.False(t, date(2023, time.February, 29).Valid())
	assert.False(t, date(2024, time.April, 31).Valid())

	assert.Equal(t, date(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, date(2024, time.March, 1), d.AddDays(2))
	assert.Equal(t, int64(2), d.AddDays(2).DaysSince(d))

	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.False(t, d.After(d))
	assert.Equal(t, "2024-02-28", d.String())

	_, err := engine.NewCalendarDate(2023, time.February, 29)
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

func TestDateOf_UsesOwnLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	instant := time.Date(2024, 6, 15, 1, 0, 0, 0, tokyo)

	assert.Equal(t, date(2024, time.June, 15), engine.DateOf(instant))
	assert.Equal(t, date(2024, time.June, 14), engine.DateOf(instant.UTC()))
}
