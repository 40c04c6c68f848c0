package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
	"github.com/tartampluch/go-age/internal/server"
	"github.com/zalando/go-keyring"
)

// GoAgeApp holds the UI state, preferences, and background sync logic.
type GoAgeApp struct {
	App         fyne.App
	Window      fyne.Window // settings
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Server  *server.CalendarServer
	Fetcher engine.VCardFetcher
	Clock   engine.Clock

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem   *fyne.MenuItem
	TrayCalcItem     *fyne.MenuItem
	TrayContactsItem *fyne.MenuItem
	TrayRefreshItem  *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string
	configChan         chan string

	ContactsMut    sync.RWMutex
	Contacts       []engine.AgeEntry
	contactsWindow fyne.Window

	calc *calculator
}

// NewGoAgeApp constructs the application and wires dependencies.
func NewGoAgeApp(a fyne.App, ctx context.Context, srv *server.CalendarServer, fetcher engine.VCardFetcher) *GoAgeApp {
	a.SetIcon(theme.HistoryIcon())

	return &GoAgeApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Fetcher:            fetcher,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
		Contacts:           make([]engine.AgeEntry, 0),
	}
}

// Run launches the services, opens the calculator and blocks in the UI loop.
func (app *GoAgeApp) Run() {
	app.SetupI18n()
	app.watchPreferences()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported, config.LogKeyComponent, config.CompUI)
	}

	go app.backgroundWorker()
	app.ShowCalculatorWindow()
	app.App.Run()
}

// watchPreferences wakes the worker when settings change.
func (app *GoAgeApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

func (app *GoAgeApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, app.ShowContactsWindow)

	app.TrayCalcItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuCalc), app.ShowCalculatorWindow)
	app.TrayCalcItem.Icon = theme.HistoryIcon()

	app.TrayContactsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuContacts), app.ShowContactsWindow)
	app.TrayContactsItem.Icon = theme.AccountIcon()

	app.TrayRefreshItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRefresh), func() {
		go app.performSync(true)
	})
	app.TrayRefreshItem.Icon = theme.ViewRefreshIcon()

	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), app.ShowSettingsWindow)
	app.TraySettingsItem.Icon = theme.SettingsIcon()

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayCalcItem,
		app.TrayContactsItem,
		fyne.NewMenuItemSeparator(),
		app.TrayRefreshItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *GoAgeApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayCalcItem.Label = app.GetMsg(config.TKeyMenuCalc)
	app.TrayContactsItem.Label = app.GetMsg(config.TKeyMenuContacts)
	app.TrayRefreshItem.Label = app.GetMsg(config.TKeyMenuRefresh)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.Menu.Refresh()
}

// syncInterval is zero when periodic refresh is disabled.
func (app *GoAgeApp) syncInterval() time.Duration {
	val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)
	if val <= config.DisabledInterval {
		return 0
	}
	return time.Duration(val) * time.Minute
}

// backgroundWorker syncs once at startup, then on every interval tick.
func (app *GoAgeApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.performSync(false)

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	schedule := func(d time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if d > 0 {
			ticker = time.NewTicker(d)
			tick = ticker.C
		}
	}

	current := app.syncInterval()
	schedule(current)
	defer schedule(0)

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, current)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			if next := app.syncInterval(); next != current {
				log.Info(config.MsgUpdateSync, config.LogKeyOld, current, config.LogKeyNew, next)
				current = next
				schedule(current)
			}

		case <-tick:
			app.performSync(false)
		}
	}
}

// performSync rebuilds the contact roster and the milestone feed.
func (app *GoAgeApp) performSync(manual bool) {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	cfg := app.loadSyncConfig()
	if cfg.Mode == "" {
		slog.Info(config.MsgSyncSkipped, config.LogKeyComponent, config.CompUI)
		app.Server.Update([]byte(config.StubVCalendar))
		app.updateTrayStatus(0)
		return
	}

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifStart)))
	}

	gen := &engine.Generator{
		Clock:           app.Clock,
		Fetcher:         app.Fetcher,
		FormatSummary:   app.buildSummaryFormatter(),
		FormatMilestone: app.buildMilestoneFormatter(),
	}

	icsData, entries, countToday, err := gen.RunSync(app.Ctx, cfg)
	if err != nil {
		slog.Error(config.MsgSyncFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleSyncError, app.GetMsg(config.TKeyNotifError)))
		}
		app.updateTrayStatus(-1)
		return
	}

	app.ContactsMut.Lock()
	app.Contacts = entries
	app.ContactsMut.Unlock()

	app.Server.Update(icsData)
	app.updateTrayStatus(countToday)

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifSuccess)))
	}
}

// updateTrayStatus shows how many birthdays and milestones fall today; -1 means error.
func (app *GoAgeApp) updateTrayStatus(count int) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	var label string
	switch {
	case count < 0:
		label = config.FallbackTrayError
	case count == 0:
		label = app.GetMsg(config.TKeyTrayStatusZero)
		if label == config.TKeyTrayStatusZero {
			label = fmt.Sprintf(config.FallbackTrayDefault, 0)
		}
	default:
		if app.Localizer != nil {
			msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
				MessageID:    config.TKeyTrayStatus,
				TemplateData: map[string]any{"Count": count},
				PluralCount:  count,
			})
			if err == nil {
				label = msg
			}
		}
		if label == "" {
			label = fmt.Sprintf(config.FallbackTrayDefault, count)
		}
	}

	app.TrayStatusItem.Label = label
	app.Menu.Refresh()
}

// loadSyncConfig assembles the engine configuration from preferences and the keyring.
func (app *GoAgeApp) loadSyncConfig() engine.SyncConfig {
	cfg := engine.SyncConfig{
		Mode:      app.Preferences.String(config.PrefSourceMode),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefCardDAVURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}

	if days := app.Preferences.IntWithFallback(config.PrefReminderDays, config.DefaultReminderDays); days > 0 {
		cfg.ReminderTrigger = fmt.Sprintf("%s%d%s", config.ISONegativePrefix, days, config.ISODay)
	}

	return cfg
}

// buildSummaryFormatter localizes birthday event titles.
func (app *GoAgeApp) buildSummaryFormatter() func(name string, age int, yearKnown bool) string {
	return func(name string, age int, yearKnown bool) string {
		key, fallback := config.TKeyEvtSummary, fmt.Sprintf(config.FallbackSummary, name)
		switch {
		case yearKnown && age == 0:
			key, fallback = config.TKeyEvtSummaryBirth, fmt.Sprintf(config.FallbackSummaryBirth, name)
		case yearKnown:
			key, fallback = config.TKeyEvtSummaryAge, fmt.Sprintf(config.FallbackSummaryAge, name, age)
		}

		msg := app.GetMsgData(key, map[string]any{"Name": name, "Age": age})
		if msg == key || msg == "" {
			return fallback
		}
		return msg
	}
}

// buildMilestoneFormatter localizes "N days old" event titles.
func (app *GoAgeApp) buildMilestoneFormatter() func(name string, days int64) string {
	return func(name string, days int64) string {
		formatted := app.formatNumber(days)
		msg := app.GetMsgData(config.TKeyEvtMilestone, map[string]any{"Name": name, "Days": formatted})
		if msg == config.TKeyEvtMilestone || msg == "" {
			return fmt.Sprintf(config.FallbackMilestone, name, formatted)
		}
		return msg
	}
}
