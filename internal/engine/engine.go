package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-age/internal/config"
)

// SyncConfig contains all parameters required to build the contact roster.
type SyncConfig struct {
	Mode            string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath       string // Absolute path to the .vcf file
	WebURL          string // CardDAV or WebDAV URL
	WebUser         string // HTTP Basic Auth Username
	WebPass         string // HTTP Basic Auth Password
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D"), empty for none
}

// Generator turns a vCard address book into age entries and a milestone calendar.
type Generator struct {
	Clock   Clock
	Fetcher VCardFetcher

	// FormatSummary and FormatMilestone let the UI localize event titles.
	// Nil values fall back to the English strings in config.
	FormatSummary   func(name string, age int, yearKnown bool) string
	FormatMilestone func(name string, days int64) string
}

// syncStats is logged once per run.
type syncStats struct {
	processed, withBday, today int
}

// RunSync executes the fetching, parsing, and generation pipeline.
// It returns the ICS data, the roster, the number of events falling today, and any error.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) ([]byte, []AgeEntry, int, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}

	ics, entries, count, err := g.generate(ctx, reader, cfg.ReminderTrigger)
	if err == nil {
		log.Debug("Sync finished", config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return ics, entries, count, err
}

// acquireStream opens the appropriate data source based on configuration.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// generate decodes the vCard stream, computes each contact's age and builds
// the calendar in a single pass.
func (g *Generator) generate(ctx context.Context, r io.Reader, reminderTrigger string) ([]byte, []AgeEntry, int, error) {
	cal := newCalendar()

	// Ages are local wall-clock notions; UTC is only used for the DTSTAMP.
	now := g.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	decoder := vcard.NewDecoder(r)
	var stats syncStats
	var entries []AgeEntry

	for {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, ErrAddressBookTooLarge) {
			slog.Error(config.MsgFetchAborted,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		b, err := parseBirthday(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}

		name := contactName(card)
		entry, err := newAgeEntry(now, name, b)
		if err != nil {
			slog.Debug(config.MsgSkippedUnborn,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyError, err)
			continue
		}
		stats.withBday++
		entries = append(entries, entry)

		events, hits := g.createEvents(entry, b, reminderTrigger, now)
		if hits > 0 {
			stats.today += hits
			slog.Info(config.MsgMilestoneToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyDOB, b.date.String(),
				config.LogKeyDays, entry.Age.TotalDays)
		}

		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	if len(cal.Children) == 0 {
		// A stub keeps subscribed clients from flagging the feed as invalid.
		g.logSuccess(stats)
		return []byte(config.StubVCalendar), entries, 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(stats)
	return buf.Bytes(), entries, stats.today, nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)
	return cal
}

// contactName prefers FN (formatted) over N (structured).
func contactName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}

func (g *Generator) logSuccess(stats syncStats) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withBday),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}

// newAgeEntry computes everything the roster shows for one contact.
// It fails with ErrInvalidInput for people born after now.
func newAgeEntry(now time.Time, name string, b birthday) (AgeEntry, error) {
	input := fmt.Sprintf(config.FormatHashInput, name, b.date.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))

	entry := AgeEntry{
		UID:         fmt.Sprintf("%x", hash[:config.UIDHashLength]),
		Name:        name,
		DateOfBirth: b.date.In(now.Location()),
		YearKnown:   b.yearKnown,
	}
	if !b.instant.IsZero() {
		entry.DateOfBirth = b.instant
	}

	if !b.yearKnown {
		entry.NextBirthday, _ = calculateNextOccurrence(now, b.date, false)
		return entry, nil
	}

	var (
		age AgeBreakdown
		err error
	)
	if b.instant.IsZero() {
		age, err = ComputeAge(b.date, now)
	} else {
		age, err = ComputeAgeAt(b.instant, now)
	}
	if err != nil {
		return AgeEntry{}, err
	}

	entry.Age = age
	entry.Facts = ComputeFunFacts(age.TotalDays)
	entry.NextBirthday, entry.AgeNext = calculateNextOccurrence(now, b.date, true)
	entry.NextMilestone, entry.MilestoneDays = nextDayMilestone(now, b.date)
	return entry, nil
}

// calculateNextOccurrence returns today or the next anniversary of birth.
// time.Date moves Feb 29 to March 1 in common years.
func calculateNextOccurrence(now time.Time, birth CalendarDate, yearKnown bool) (time.Time, int) {
	loc := now.Location()
	currentYear := now.Year()

	candidate := time.Date(currentYear, birth.Month, birth.Day, 0, 0, 0, 0, loc)
	todayStart := DateOf(now).In(loc)
	if candidate.Before(todayStart) {
		candidate = time.Date(currentYear+1, birth.Month, birth.Day, 0, 0, 0, 0, loc)
	}

	ageNext := 0
	if yearKnown {
		ageNext = candidate.Year() - birth.Year
	}
	return candidate, ageNext
}

// nextDayMilestone finds the next calendar day, today included, on which the
// number of days since birth is a positive multiple of config.MilestoneDayStep.
func nextDayMilestone(now time.Time, birth CalendarDate) (time.Time, int64) {
	const step = config.MilestoneDayStep

	elapsed := DateOf(now).DaysSince(birth)
	target := (elapsed + step - 1) / step * step
	if target == 0 {
		target = step
	}
	return birth.AddDays(int(target)).In(now.Location()), target
}

// createEvents emits birthday events for last, this and next year (never
// before birth) plus the upcoming day milestone. It also reports how many of
// those events fall on today's date.
func (g *Generator) createEvents(entry AgeEntry, b birthday, reminderTrigger string, now time.Time) ([]*ical.Event, int) {
	loc := now.Location()
	today := DateOf(now)
	currentYear := today.Year

	var events []*ical.Event
	hits := 0

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if b.yearKnown && y < b.date.Year {
			continue
		}

		age := 0
		if b.yearKnown {
			age = y - b.date.Year
		}
		summary := g.summary(entry.Name, age, b.yearKnown)

		eventDate := time.Date(y, b.date.Month, b.date.Day, 0, 0, 0, 0, loc)
		if DateOf(eventDate) == today {
			hits++
		}

		uid := fmt.Sprintf(config.FormatUID, entry.UID, y, config.ICalDomain)
		events = append(events, newDayEvent(uid, summary, config.CategoryBirthday, eventDate, reminderTrigger))
	}

	if b.yearKnown {
		if DateOf(entry.NextMilestone) == today {
			hits++
		}
		uid := fmt.Sprintf(config.FormatUIDTagged, entry.UID, config.UIDTagMilestone, entry.MilestoneDays, config.ICalDomain)
		summary := g.milestone(entry.Name, entry.MilestoneDays)
		events = append(events, newDayEvent(uid, summary, config.CategoryMilestone, entry.NextMilestone, reminderTrigger))
	}

	return events, hits
}

func (g *Generator) summary(name string, age int, yearKnown bool) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(name, age, yearKnown)
	}
	switch {
	case !yearKnown:
		return fmt.Sprintf(config.FallbackSummary, name)
	case age == 0:
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	default:
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	}
}

func (g *Generator) milestone(name string, days int64) string {
	if g.FormatMilestone != nil {
		return g.FormatMilestone(name, days)
	}
	return fmt.Sprintf(config.FallbackMilestone, name, strconv.FormatInt(days, 10))
}

// newDayEvent builds an all-day event, with a DISPLAY alarm when trigger is set.
func newDayEvent(uid, summary, category string, day time.Time, trigger string) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, uid)
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropCategories, category)

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(day)
	event.Props.Set(dtStartProp)

	if trigger != "" {
		alarm := ical.NewComponent(config.ICalComponent)
		alarm.Props.SetText(config.PropAction, config.ICalAction)
		alarm.Props.SetText(config.PropDescription, summary)

		// Set the raw value to avoid a VALUE=TEXT parameter on TRIGGER.
		triggerProp := ical.NewProp(config.PropTrigger)
		triggerProp.Value = trigger
		alarm.Props.Set(triggerProp)

		event.Children = append(event.Children, alarm)
	}
	return event
}

// birthday is a parsed vCard BDAY value.
type birthday struct {
	date      CalendarDate
	instant   time.Time // zero unless the value carried a time of day
	yearKnown bool
}

// parseBirthday handles the vCard BDAY layouts, including truncated --MM-DD.
func parseBirthday(value string) (birthday, error) {
	for _, f := range []string{config.DateFormatFullDash, config.DateFormatFullBasic} {
		if t, err := time.Parse(f, value); err == nil {
			return birthday{date: DateOf(t), yearKnown: true}, nil
		}
	}

	for _, f := range []string{config.DateFormatRFC3339, config.DateFormatFullT} {
		if t, err := time.Parse(f, value); err == nil {
			return birthday{date: DateOf(t), instant: t, yearKnown: true}, nil
		}
	}

	// Year unknown: anchor on a leap year so --02-29 survives.
	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			d := CalendarDate{Year: config.DefaultLeapYear, Month: t.Month(), Day: t.Day()}
			return birthday{date: d}, nil
		}
	}

	return birthday{}, fmt.Errorf("%w: %q", ErrBirthDateUnparseable, value)
}
