package ui

import (
	"errors"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
)

// calculator is the birth date form and its animated result card.
// All fields are touched from the UI goroutine only; timers hop back through fyne.Do.
type calculator struct {
	app    *GoAgeApp
	window fyne.Window

	entry  *BirthDateEntry
	button *widget.Button

	toast      *fyne.Container
	toastLabel *widget.Label
	toastTimer *time.Timer

	results  *fyne.Container
	headline *widget.Label
	values   map[string]*widget.Label
	visible  bool

	pendingTimers []*time.Timer
	pendingAnims  []*fyne.Animation

	// Tests zero these to make the flow synchronous.
	delay    time.Duration
	animate  bool
	toastFor time.Duration
}

// ShowCalculatorWindow opens the age calculator, or focuses it when already open.
func (app *GoAgeApp) ShowCalculatorWindow() {
	if app.calc != nil {
		app.calc.window.RequestFocus()
		return
	}

	slog.Info("Opening calculator window", config.LogKeyComponent, config.CompUICalc)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinCalc))
	app.calc = app.newCalculator(w)

	w.Resize(fyne.NewSize(config.CalcWinWidth, config.CalcWinHeight))
	w.SetOnClosed(func() {
		app.calc.stopPending()
		app.calc = nil
	})
	w.Show()
	w.Canvas().Focus(app.calc.entry)
}

func (app *GoAgeApp) newCalculator(w fyne.Window) *calculator {
	c := &calculator{
		app:      app,
		window:   w,
		values:   make(map[string]*widget.Label),
		delay:    config.CalculateDelay,
		animate:  true,
		toastFor: config.ToastDuration,
	}

	c.entry = NewBirthDateEntry()
	c.entry.OnEscape = c.hideToast
	c.entry.OnSubmitted = func(string) { c.submit() }
	c.entry.OnChanged = c.onInputChanged

	c.button = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCalculate), theme.ConfirmIcon(), c.submit)
	c.button.Importance = widget.HighImportance

	itemBirth := widget.NewFormItem(app.GetMsg(config.TKeyLblBirthDate), c.entry)
	itemBirth.HintText = app.GetMsg(config.TKeyHintBirthDate)
	form := widget.NewForm(itemBirth)

	c.toastLabel = widget.NewLabel("")
	c.toastLabel.Importance = widget.DangerImportance
	c.toastLabel.Wrapping = fyne.TextWrapWord
	closeToast := widget.NewButtonWithIcon("", theme.CancelIcon(), c.hideToast)
	closeToast.Importance = widget.LowImportance
	c.toast = container.NewBorder(nil, nil, widget.NewIcon(theme.ErrorIcon()), closeToast, c.toastLabel)
	c.toast.Hide()

	c.results = c.buildResults()
	c.results.Hide()

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			c.hideToast()
		}
	})

	w.SetContent(container.NewBorder(
		c.toast, nil, nil, nil,
		container.NewVScroll(container.NewPadded(container.NewVBox(form, c.button, c.results))),
	))
	return c
}

func (c *calculator) buildResults() *fyne.Container {
	c.headline = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	cell := func(field, key string) fyne.CanvasObject {
		value := widget.NewLabelWithStyle("0", fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true})
		c.values[field] = value
		caption := widget.NewLabelWithStyle(c.app.GetMsg(key), fyne.TextAlignCenter, fyne.TextStyle{})
		return container.NewVBox(value, caption)
	}

	ageGrid := container.NewGridWithColumns(config.LayoutColumnsDouble,
		cell(config.FieldYears, config.TKeyLblYears),
		cell(config.FieldMonths, config.TKeyLblMonths),
		cell(config.FieldDays, config.TKeyLblDays),
		cell(config.FieldHours, config.TKeyLblHours),
	)

	facts := widget.NewForm()
	for _, f := range []struct{ field, key string }{
		{config.FieldHeartbeats, config.TKeyLblHeartbeats},
		{config.FieldBreaths, config.TKeyLblBreaths},
		{config.FieldSteps, config.TKeyLblSteps},
	} {
		value := widget.NewLabelWithStyle("0", fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true})
		c.values[f.field] = value
		facts.Append(c.app.GetMsg(f.key), value)
	}

	return container.NewVBox(
		widget.NewSeparator(),
		c.headline,
		widget.NewCard("", "", ageGrid),
		widget.NewCard(c.app.GetMsg(config.TKeyLblFunFacts), "", facts),
	)
}

// validate checks the entry against today's date.
func (c *calculator) validate(text string) (engine.CalendarDate, error) {
	return engine.ValidateBirthDate(text, c.app.Clock.Now())
}

// errorMessage maps a validation failure to its localized text.
func (c *calculator) errorMessage(err error) string {
	switch {
	case errors.Is(err, engine.ErrBirthDateMissing):
		return c.app.GetMsg(config.TKeyErrBirthEmpty)
	case errors.Is(err, engine.ErrBirthDateFuture):
		return c.app.GetMsg(config.TKeyErrBirthFuture)
	default:
		return c.app.GetMsg(config.TKeyErrBirthFormat)
	}
}

// submit validates the input then computes after config.CalculateDelay.
func (c *calculator) submit() {
	birth, err := c.validate(c.entry.Text)
	if err != nil {
		slog.Debug(config.MsgAgeInvalid,
			config.LogKeyComponent, config.CompUICalc,
			config.LogKeyValue, c.entry.Text,
			config.LogKeyError, err)
		c.showToast(c.errorMessage(err))
		return
	}
	c.hideToast()

	c.button.Disable()
	c.button.SetText(c.app.GetMsg(config.TKeyBtnCalculating))

	if c.delay <= 0 {
		c.finish(birth)
		return
	}
	time.AfterFunc(c.delay, func() {
		fyne.Do(func() { c.finish(birth) })
	})
}

func (c *calculator) finish(birth engine.CalendarDate) {
	defer func() {
		c.button.SetText(c.app.GetMsg(config.TKeyBtnCalculate))
		c.button.Enable()
	}()

	age, err := engine.ComputeAge(birth, c.app.Clock.Now())
	if err != nil {
		c.showToast(c.errorMessage(err))
		return
	}
	facts := engine.ComputeFunFacts(age.TotalDays)

	slog.Info(config.MsgAgeComputed,
		config.LogKeyComponent, config.CompUICalc,
		config.LogKeyYears, age.Years,
		config.LogKeyTotalDays, age.TotalDays)

	c.reveal(age, facts)
}

// reveal shows the result card, counting each field up on its own schedule.
func (c *calculator) reveal(age engine.AgeBreakdown, facts engine.FunFacts) {
	c.stopPending()
	c.results.Show()
	c.visible = true

	if !c.animate {
		c.render(age, facts)
		return
	}

	c.setField(config.FieldAge, 0)
	for _, label := range c.values {
		label.SetText(c.app.formatNumber(0))
	}

	for _, step := range RevealPlan(age, facts) {
		if step.Delay <= 0 {
			c.startStep(step)
			continue
		}
		timer := time.AfterFunc(step.Delay, func() {
			fyne.Do(func() { c.startStep(step) })
		})
		c.pendingTimers = append(c.pendingTimers, timer)
	}
}

func (c *calculator) startStep(step RevealStep) {
	frames := CountFrames(step.Target, config.CountDuration, config.CountTick)
	anim := fyne.NewAnimation(config.CountDuration, func(p float32) {
		c.setField(step.Field, frameAt(frames, p))
	})
	anim.Curve = fyne.AnimationLinear
	c.pendingAnims = append(c.pendingAnims, anim)
	anim.Start()
}

// render writes final values at once.
func (c *calculator) render(age engine.AgeBreakdown, facts engine.FunFacts) {
	for _, step := range RevealPlan(age, facts) {
		c.setField(step.Field, step.Target)
	}
}

func (c *calculator) setField(field string, v int64) {
	if field == config.FieldAge {
		c.headline.SetText(c.app.GetMsgData(config.TKeyLblHeadline, map[string]any{
			"Years": c.app.formatNumber(v),
		}))
		return
	}
	if label, ok := c.values[field]; ok {
		label.SetText(c.app.formatNumber(v))
	}
}

// onInputChanged checks the entry as it is typed. Partial dates are left
// alone until they reach full length; a complete date that fails validation
// raises the toast, and a valid one refreshes visible results without
// animation.
func (c *calculator) onInputChanged(text string) {
	if len([]rune(text)) < len(config.DateFormatFullDash) {
		return
	}
	birth, err := c.validate(text)
	if err != nil {
		c.showToast(c.errorMessage(err))
		return
	}
	c.hideToast()
	if !c.visible {
		return
	}
	age, err := engine.ComputeAge(birth, c.app.Clock.Now())
	if err != nil {
		return
	}
	c.stopPending()
	c.render(age, engine.ComputeFunFacts(age.TotalDays))
}

// stopPending cancels reveal steps that have not run yet.
func (c *calculator) stopPending() {
	for _, t := range c.pendingTimers {
		t.Stop()
	}
	for _, a := range c.pendingAnims {
		a.Stop()
	}
	c.pendingTimers = nil
	c.pendingAnims = nil
}

func (c *calculator) showToast(msg string) {
	c.toastLabel.SetText(msg)
	c.toast.Show()

	if c.toastTimer != nil {
		c.toastTimer.Stop()
	}
	c.toastTimer = time.AfterFunc(c.toastFor, func() {
		fyne.Do(c.hideToast)
	})
}

func (c *calculator) hideToast() {
	if c.toastTimer != nil {
		c.toastTimer.Stop()
		c.toastTimer = nil
	}
	c.toast.Hide()
}
