package capturewin

import (
	"fmt"

	"keytap/internal/core/capture"
	"keytap/internal/ui/status"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Producer receives the characters of each key event.
type Producer interface {
	Append(chars []rune)
}

// Config defines the capture window appearance.
type Config struct {
	Title string
}

// Window is the focused surface that turns key presses into taps.
type Window struct {
	app         fyne.App
	window      fyne.Window
	producer    Producer
	titleLabel  *widget.Label
	statusLabel *widget.Label
	progress    *widget.ProgressBar
	onClose     func()
}

// New creates the capture window and wires its key callbacks to producer.
func New(app fyne.App, config Config, producer Producer) *Window {
	title := config.Title
	if title == "" {
		title = "KeyTap"
	}
	window := app.NewWindow(title)
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	titleLabel := widget.NewLabelWithStyle(title, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	statusLabel := widget.NewLabelWithStyle(status.Idle, fyne.TextAlignCenter, fyne.TextStyle{})
	progress := widget.NewProgressBar()
	progress.TextFormatter = func() string {
		return fmt.Sprintf("%.0f / %.0f", progress.Value, progress.Max)
	}

	window.SetContent(container.NewPadded(container.NewVBox(titleLabel, statusLabel, progress)))
	window.Resize(fyne.NewSize(320, 140))

	capWindow := &Window{
		app:         app,
		window:      window,
		producer:    producer,
		titleLabel:  titleLabel,
		statusLabel: statusLabel,
		progress:    progress,
	}

	window.Canvas().SetOnTypedRune(capWindow.typedRune)
	window.Canvas().SetOnTypedKey(capWindow.typedKey)
	window.SetCloseIntercept(func() {
		window.Hide()
		if capWindow.onClose != nil {
			capWindow.onClose()
		}
	})

	return capWindow
}

// Show displays the window and requests keyboard focus.
func (capWindow *Window) Show() {
	capWindow.window.Show()
	capWindow.window.RequestFocus()
}

// Hide hides the window. Key events stop reaching the producer.
func (capWindow *Window) Hide() {
	capWindow.window.Hide()
}

// SetOnClose sets the handler called after the window is closed by the user.
func (capWindow *Window) SetOnClose(handler func()) {
	capWindow.onClose = handler
}

// HandleEvent updates the window from a capture event. Safe from any goroutine.
func (capWindow *Window) HandleEvent(event capture.Event) {
	fyne.Do(func() {
		capWindow.applyEventUnsafe(event)
	})
}

// StatusText returns the current status line.
func (capWindow *Window) StatusText() string {
	return capWindow.statusLabel.Text
}

func (capWindow *Window) applyEventUnsafe(event capture.Event) {
	capWindow.statusLabel.SetText(status.Describe(event))

	switch event.Type {
	case capture.EventArmed:
		capWindow.progress.Max = float64(event.TargetCount)
		capWindow.progress.SetValue(0)
		capWindow.Show()
	case capture.EventTap:
		capWindow.progress.Max = float64(event.TargetCount)
		capWindow.progress.SetValue(float64(min(event.Taps, event.TargetCount)))
	case capture.EventCompleted, capture.EventEscaped:
		capWindow.progress.SetValue(0)
	}
}

func (capWindow *Window) typedRune(char rune) {
	if chars := RuneChars(char); len(chars) > 0 {
		capWindow.producer.Append(chars)
	}
}

func (capWindow *Window) typedKey(event *fyne.KeyEvent) {
	if event == nil {
		return
	}
	if chars := KeyChars(event.Name); len(chars) > 0 {
		capWindow.producer.Append(chars)
	}
}
