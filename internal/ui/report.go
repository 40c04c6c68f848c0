package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
)

// PrintAge writes the localized age breakdown of birth, as of now, without
// starting a window. It returns the validation error for unusable input.
func PrintAge(w io.Writer, lang, birth string, now time.Time) error {
	date, err := engine.ValidateBirthDate(birth, now)
	if err != nil {
		return err
	}
	age, err := engine.ComputeAge(date, now)
	if err != nil {
		return err
	}
	facts := engine.ComputeFunFacts(age.TotalDays)

	loc := NewLocalizer(lang)
	msg := func(key string) string { return translate(loc, key, nil) }
	num := func(n int64) string { return FormatNumber(lang, n) }

	_, err = fmt.Fprintf(w, config.MsgHeadlessOutput,
		translate(loc, config.TKeyLblHeadline, map[string]any{"Years": num(int64(age.Years))}),
		msg(config.TKeyLblYears), num(int64(age.Years)),
		msg(config.TKeyLblMonths), num(int64(age.Months)),
		msg(config.TKeyLblDays), num(int64(age.Days)),
		msg(config.TKeyLblHours), num(age.Hours),
		msg(config.TKeyLblFunFacts),
		msg(config.TKeyLblHeartbeats), num(facts.Heartbeats),
		msg(config.TKeyLblBreaths), num(facts.Breaths),
		msg(config.TKeyLblSteps), num(facts.Steps),
	)
	return err
}
