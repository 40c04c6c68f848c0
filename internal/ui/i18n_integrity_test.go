package ui_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-age/internal/config"
)

var translationKeys = []string{
	config.TKeyWinTitle,
	config.TKeyWinCalc,
	config.TKeyWinContacts,
	config.TKeyMenuCalc,
	config.TKeyMenuContacts,
	config.TKeyMenuRefresh,
	config.TKeyMenuSettings,
	config.TKeyTrayStatus,
	config.TKeyTrayStatusZero,
	config.TKeyNotifStart,
	config.TKeyNotifSuccess,
	config.TKeyNotifError,
	config.TKeyModeCardDAV,
	config.TKeyModeLocal,
	config.TKeyLblLanguage,
	config.TKeyLblMinutes,
	config.TKeyLblRefresh,
	config.TKeyHelpInterval,
	config.TKeyLblPort,
	config.TKeyHelpPort,
	config.TKeyLblGeneral,
	config.TKeyLblReminder,
	config.TKeyHelpReminder,
	config.TKeyBtnSave,
	config.TKeyBtnCancel,
	config.TKeyLblFooter,
	config.TKeyBtnBrowse,
	config.TKeyLblURL,
	config.TKeyHelpURL,
	config.TKeyLblUser,
	config.TKeyLblPass,
	config.TKeyLblSource,
	config.TKeyLblBirthDate,
	config.TKeyHintBirthDate,
	config.TKeyBtnCalculate,
	config.TKeyBtnCalculating,
	config.TKeyLblHeadline,
	config.TKeyLblYears,
	config.TKeyLblMonths,
	config.TKeyLblDays,
	config.TKeyLblHours,
	config.TKeyLblFunFacts,
	config.TKeyLblHeartbeats,
	config.TKeyLblBreaths,
	config.TKeyLblSteps,
	config.TKeyErrBirthEmpty,
	config.TKeyErrBirthFormat,
	config.TKeyErrBirthFuture,
	config.TKeyEvtSummary,
	config.TKeyEvtSummaryAge,
	config.TKeyEvtSummaryBirth,
	config.TKeyEvtMilestone,
	config.TKeyColName,
	config.TKeyColAge,
	config.TKeyColDays,
	config.TKeyColMilestone,
	config.TKeyFormatAge,
	config.TKeyFormatDate,
	config.TKeyErrPortReq,
	config.TKeyErrPortNum,
	config.TKeyErrPortRange,
}

func loadLocale(t *testing.T, lang string) map[string]any {
	t.Helper()

	content, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
	require.NoErrorf(t, err, "Must load active.%s.json", lang)

	var messages map[string]any
	require.NoError(t, json.Unmarshal(content, &messages), "JSON must be valid")
	return messages
}

// TestI18nIntegrity ensures every key used in code exists in every locale, and
// that locales carry no keys the code never asks for.
func TestI18nIntegrity(t *testing.T) {
	defined := make(map[string]bool, len(translationKeys))
	for _, k := range translationKeys {
		defined[k] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			messages := loadLocale(t, lang)

			for key := range defined {
				assert.Containsf(t, messages, key, "Key '%s' is missing in active.%s.json", key, lang)
			}
			for key := range messages {
				assert.Truef(t, defined[key], "Key '%s' in active.%s.json is never used", key, lang)
			}
		})
	}
}

func TestI18nIntegrity_PluralForms(t *testing.T) {
	for _, lang := range config.SupportedLanguages {
		status, ok := loadLocale(t, lang)[config.TKeyTrayStatus].(map[string]any)
		require.Truef(t, ok, "%s: tray status must be a plural message", lang)
		assert.Contains(t, status, "one")
		assert.Contains(t, status, "other")
	}
}
