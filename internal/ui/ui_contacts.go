package ui

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
)

// ShowContactsWindow lists every contact's age, sorted by upcoming milestone.
// If the window is already open, it requests focus.
func (app *GoAgeApp) ShowContactsWindow() {
	if app.contactsWindow != nil {
		app.contactsWindow.RequestFocus()
		return
	}

	app.contactsWindow = app.App.NewWindow(app.GetMsg(config.TKeyWinContacts))
	app.contactsWindow.Resize(fyne.NewSize(config.ContactsWinWidth, config.ContactsWinHeight))

	// Local copy so a sync can swap the roster while the window is open.
	app.ContactsMut.RLock()
	rows := make([]engine.AgeEntry, len(app.Contacts))
	copy(rows, app.Contacts)
	app.ContactsMut.RUnlock()

	slog.Info(config.LogMsgOpenWin,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(rows))

	sortCol := config.ColIDMilestone
	sortAsc := true
	sortEntries(rows, sortCol, sortAsc)

	table := widget.NewTable(
		func() (int, int) {
			return len(rows), config.ColCount
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			if id.Row >= len(rows) {
				return
			}
			o.(*widget.Label).SetText(app.cellText(rows[id.Row], id.Col))
		},
	)

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton(config.HeaderPlaceholder, func() {})
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)

		text := app.GetMsg(columnTitleKey(id.Col))
		if id.Col == sortCol {
			if sortAsc {
				text += config.SortIconAsc
			} else {
				text += config.SortIconDesc
			}
		}
		btn.SetText(text)

		btn.OnTapped = func() {
			if sortCol == id.Col {
				sortAsc = !sortAsc
			} else {
				sortCol, sortAsc = id.Col, true
			}
			sortEntries(rows, sortCol, sortAsc)
			slog.Debug(config.LogMsgSorted,
				config.LogKeyComponent, config.CompUI,
				config.LogKeySortCol, sortCol,
				config.LogKeySortAsc, sortAsc)
			table.Refresh()
		}
	}

	table.SetColumnWidth(config.ColIDName, config.ColWidthName)
	table.SetColumnWidth(config.ColIDAge, config.ColWidthAge)
	table.SetColumnWidth(config.ColIDDays, config.ColWidthDays)
	table.SetColumnWidth(config.ColIDMilestone, config.ColWidthMilestone)

	app.contactsWindow.SetContent(container.NewBorder(nil, nil, nil, nil, table))
	app.contactsWindow.SetOnClosed(func() {
		app.contactsWindow = nil
	})
	app.contactsWindow.Show()
}

func columnTitleKey(col int) string {
	switch col {
	case config.ColIDName:
		return config.TKeyColName
	case config.ColIDAge:
		return config.TKeyColAge
	case config.ColIDDays:
		return config.TKeyColDays
	default:
		return config.TKeyColMilestone
	}
}

// cellText renders one table cell. Contacts without a birth year only have a name.
func (app *GoAgeApp) cellText(e engine.AgeEntry, col int) string {
	if col == config.ColIDName {
		return e.Name
	}
	if !e.YearKnown {
		return config.AgeUnknown
	}

	switch col {
	case config.ColIDAge:
		text := app.GetMsgData(config.TKeyFormatAge, map[string]any{
			"Years":  e.Age.Years,
			"Months": e.Age.Months,
			"Days":   e.Age.Days,
		})
		if text == config.TKeyFormatAge {
			text = fmt.Sprintf(config.FallbackAge, e.Age.Years, e.Age.Months, e.Age.Days)
		}
		return text
	case config.ColIDDays:
		return app.formatNumber(e.Age.TotalDays)
	default:
		format := app.GetMsg(config.TKeyFormatDate)
		if format == config.TKeyFormatDate {
			format = config.DateFormatDisplay
		}
		return fmt.Sprintf(config.FormatMilestoneCell, app.formatNumber(e.MilestoneDays), e.NextMilestone.Format(format))
	}
}

// sortEntries orders rows in place. Contacts without a birth year sort after
// everyone else in ascending order; ties fall back to the name.
func sortEntries(rows []engine.AgeEntry, col int, asc bool) {
	byName := func(a, b engine.AgeEntry) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}

	compare := func(a, b engine.AgeEntry) int {
		if col == config.ColIDName {
			return byName(a, b)
		}
		switch {
		case a.YearKnown && !b.YearKnown:
			return -1
		case !a.YearKnown && b.YearKnown:
			return 1
		case !a.YearKnown && !b.YearKnown:
			return byName(a, b)
		}

		var c int
		switch col {
		case config.ColIDAge, config.ColIDDays:
			c = cmpInt64(a.Age.TotalDays, b.Age.TotalDays)
		default:
			c = a.NextMilestone.Compare(b.NextMilestone)
		}
		if c == 0 {
			return byName(a, b)
		}
		return c
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if asc {
			return compare(rows[i], rows[j]) < 0
		}
		return compare(rows[j], rows[i]) < 0
	})
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
