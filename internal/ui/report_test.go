package ui_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-age/internal/engine"
	"github.com/tartampluch/go-age/internal/ui"
)

var reportNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestPrintAge(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, ui.PrintAge(&out, "en", "1990-06-10", reportNow))

	got := out.String()
	assert.Contains(t, got, "You are 34 years old\n")
	assert.Contains(t, got, "Years: 34\n")
	assert.Contains(t, got, "Months: 0\n")
	assert.Contains(t, got, "Days: 5\n")
	assert.Contains(t, got, "Hours: 298,188\n")
	assert.Contains(t, got, "\nFun facts\n")
	assert.Contains(t, got, "Steps walked: 99,392,000\n")
}

func TestPrintAge_Localized(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, ui.PrintAge(&out, "fr", "1990-06-10", reportNow))

	assert.Contains(t, out.String(), "Vous avez 34 ans")
	assert.Contains(t, out.String(), "Années: 34")
}

func TestPrintAge_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"Missing", "", engine.ErrBirthDateMissing},
		{"Future", "2024-06-16", engine.ErrBirthDateFuture},
		{"Garbage", "next tuesday", engine.ErrBirthDateUnparseable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := ui.PrintAge(&out, "en", tt.input, reportNow)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, out.String(), "Nothing is printed for rejected input")
		})
	}
}
