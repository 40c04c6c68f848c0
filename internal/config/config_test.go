package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-age/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"ErrInvalidInput", config.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestRates_Sanity pins the fun fact rates; changing them changes every published number.
func TestRates_Sanity(t *testing.T) {
	assert.Equal(t, 80, config.HeartbeatsPerMinute)
	assert.Equal(t, 16, config.BreathsPerMinute)
	assert.Equal(t, 8000, config.StepsPerDay)
	assert.Equal(t, 86400, config.SecondsPerDay)
	assert.Equal(t, 3600, config.SecondsPerHour)
	assert.Greater(t, config.MilestoneDayStep, 0)
}

func TestDefaults_Sanity(t *testing.T) {
	assert.Greater(t, config.DefaultRefreshMin, 0, "Default refresh interval must be positive")
	assert.Equal(t, 2000, config.DefaultLeapYear, "Default leap year must be 2000 for consistency")
	assert.Contains(t, config.SupportedLanguages, config.DefaultLanguage)
}

// TestPresentationTiming keeps the reveal sequence readable: each step must
// start before the previous count finishes, and the toast outlives the reveal.
func TestPresentationTiming(t *testing.T) {
	assert.Less(t, config.RevealStagger, config.CountDuration)
	assert.Greater(t, config.CountDuration, config.CountTick)
	assert.Greater(t, config.ToastDuration, 7*config.RevealStagger+config.CountDuration)
}

func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Age/"), "UserAgent must start with AppName/")
}

func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second, "HTTPTimeout must be positive")
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute, "HTTPTimeout should not be excessively long")
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second, "ShutdownTimeout must be positive")

	assert.Greater(t, config.MaxAddressBookSize, 0, "MaxAddressBookSize must be positive")
	assert.Less(t, int64(config.MaxAddressBookSize), int64(1*1024*1024*1024), "MaxAddressBookSize should stay under 1GB to protect RAM")
}
