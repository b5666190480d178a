package preferences

import (
	"strings"

	"keytap/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

var (
	transportOptions = []string{string(model.TransportBoth), string(model.TransportDBus), string(model.TransportSocket)}
	levelOptions     = []string{"debug", "info", "warn", "error"}
	formatOptions    = []string{"text", "json"}
)

// Window edits the daemon settings file. Transport and endpoint changes
// apply on the next start; the log level applies immediately.
type Window struct {
	window      fyne.Window
	settings    model.Settings
	onSave      func(model.Settings)
	transport   *widget.Select
	socketPath  *widget.Entry
	logLevel    *widget.Select
	logFormat   *widget.Select
	showWindow  *widget.Check
	trayEnabled *widget.Check
	windowTitle *widget.Entry
}

// New creates a preferences window.
func New(app fyne.App, settings model.Settings, onSave func(model.Settings)) *Window {
	window := app.NewWindow("KeyTap Settings")

	prefs := &Window{
		window:      window,
		onSave:      onSave,
		transport:   widget.NewSelect(transportOptions, nil),
		socketPath:  widget.NewEntry(),
		logLevel:    widget.NewSelect(levelOptions, nil),
		logFormat:   widget.NewSelect(formatOptions, nil),
		showWindow:  widget.NewCheck("Show capture window at startup", nil),
		trayEnabled: widget.NewCheck("Show tray icon", nil),
		windowTitle: widget.NewEntry(),
	}
	prefs.socketPath.SetPlaceHolder("default")
	prefs.UpdateSettings(settings)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Transport", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Serve over"), prefs.transport),
		widget.NewLabel("Socket path"),
		prefs.socketPath,
		widget.NewLabelWithStyle("Logging", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Level"), prefs.logLevel, widget.NewLabel("Format"), prefs.logFormat),
		widget.NewLabelWithStyle("Window", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Title"),
		prefs.windowTitle,
		prefs.showWindow,
		prefs.trayEnabled,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 420))
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings model.Settings) {
	prefs.settings = settings
	prefs.transport.SetSelected(string(settings.Transport))
	prefs.socketPath.SetText(settings.SocketPath)
	prefs.logLevel.SetSelected(settings.LogLevel)
	prefs.logFormat.SetSelected(settings.LogFormat)
	prefs.showWindow.SetChecked(settings.ShowWindow)
	prefs.trayEnabled.SetChecked(settings.TrayEnabled)
	prefs.windowTitle.SetText(settings.WindowTitle)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if transport := model.Transport(prefs.transport.Selected); transport.Valid() {
		settings.Transport = transport
	}
	settings.SocketPath = strings.TrimSpace(prefs.socketPath.Text)
	if prefs.logLevel.Selected != "" {
		settings.LogLevel = prefs.logLevel.Selected
	}
	if prefs.logFormat.Selected != "" {
		settings.LogFormat = prefs.logFormat.Selected
	}
	settings.ShowWindow = prefs.showWindow.Checked
	settings.TrayEnabled = prefs.trayEnabled.Checked
	if title := strings.TrimSpace(prefs.windowTitle.Text); title != "" {
		settings.WindowTitle = title
	}

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}
