package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-age/internal/config"
)

// NumericalEntry is an Entry that only accepts digits from the keyboard.
// Pasted text is not filtered; attach a Validator for that.
type NumericalEntry struct {
	widget.Entry
}

// NewNumericalEntry creates a new instance of NumericalEntry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

func (e *NumericalEntry) TypedRune(r rune) {
	if isDigit(r) {
		e.Entry.TypedRune(r)
	}
}

// Keyboard shows a numeric keypad on mobile devices.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// BirthDateEntry takes a YYYY-MM-DD date: digits and dashes, ten runes at most.
// Escape is reported through OnEscape instead of being swallowed by the entry.
type BirthDateEntry struct {
	widget.Entry

	OnEscape func()
}

// NewBirthDateEntry creates an entry with the date placeholder.
func NewBirthDateEntry() *BirthDateEntry {
	entry := &BirthDateEntry{}
	entry.ExtendBaseWidget(entry)
	entry.PlaceHolder = config.PlaceholderDate
	return entry
}

func (e *BirthDateEntry) TypedRune(r rune) {
	if !isDigit(r) && r != '-' {
		return
	}
	if len([]rune(e.Text)) >= len(config.DateFormatFullDash) {
		return
	}
	e.Entry.TypedRune(r)
}

func (e *BirthDateEntry) TypedKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyEscape && e.OnEscape != nil {
		e.OnEscape()
		return
	}
	e.Entry.TypedKey(ev)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
