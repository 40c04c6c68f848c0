package ui

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-age/internal/config"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed locales/*.json
var localeFS embed.FS

// sharedBundle parses the embedded locales once per process.
var sharedBundle = sync.OnceValues(loadBundle)

// loadBundle reads every locales/active.<lang>.json file.
func loadBundle() (*i18n.Bundle, []string) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return bundle, nil
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	return bundle, detectedLangs
}

// NewLocalizer returns a translator for lang backed by the embedded locales.
func NewLocalizer(lang string) *i18n.Localizer {
	bundle, _ := sharedBundle()
	if lang == "" {
		lang = config.DefaultLanguage
	}
	return i18n.NewLocalizer(bundle, lang)
}

// SetupI18n initializes the translation bundle and detects available languages.
func (app *GoAgeApp) SetupI18n() {
	bundle, langs := sharedBundle()
	if len(langs) > 0 {
		app.SupportedLanguages = langs
	}
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator based on the user's language preference.
func (app *GoAgeApp) UpdateLocalizer() {
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, app.language())
}

func (app *GoAgeApp) language() string {
	return app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
}

// GetMsg translates a key, returning the key itself when it is unknown.
func (app *GoAgeApp) GetMsg(key string) string {
	return translate(app.Localizer, key, nil)
}

// GetMsgData translates a templated key.
func (app *GoAgeApp) GetMsgData(key string, data map[string]any) string {
	return translate(app.Localizer, key, data)
}

func translate(loc *i18n.Localizer, key string, data map[string]any) string {
	if loc == nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, config.ErrLocNotInit,
		)
		return key
	}
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// FormatNumber renders n with the digit grouping of lang ("1,234,567" in English).
func FormatNumber(lang string, n int64) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprintf("%d", n)
}

func (app *GoAgeApp) formatNumber(n int64) string {
	return FormatNumber(app.language(), n)
}
