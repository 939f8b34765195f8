package main

import (
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"inputlogger/internal/core/inputlog"
)

const statusRefresh = 150 * time.Millisecond

type loggerTheme struct {
	base fyne.Theme
}

func newLoggerTheme() fyne.Theme {
	return &loggerTheme{base: theme.DarkTheme()}
}

func (t *loggerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x0e, G: 0x11, B: 0x17, A: 0xff}
	case theme.ColorNameHeaderBackground:
		return color.NRGBA{R: 0x13, G: 0x17, B: 0x1f, A: 0xff}
	case theme.ColorNameButton:
		return color.NRGBA{R: 0x1c, G: 0x22, B: 0x2d, A: 0xff}
	case theme.ColorNameDisabledButton:
		return color.NRGBA{R: 0x15, G: 0x19, B: 0x21, A: 0xff}
	case theme.ColorNameInputBackground:
		return color.NRGBA{R: 0x12, G: 0x17, B: 0x20, A: 0xff}
	case theme.ColorNameInputBorder, theme.ColorNameSeparator:
		return color.NRGBA{R: 0x2a, G: 0x32, B: 0x41, A: 0xff}
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return color.NRGBA{R: 0x6c, G: 0xb6, B: 0xff, A: 0xff}
	case theme.ColorNameFocus:
		return color.NRGBA{R: 0x6c, G: 0xb6, B: 0xff, A: 0x66}
	case theme.ColorNameHover:
		return color.NRGBA{R: 0x6c, G: 0xb6, B: 0xff, A: 0x22}
	case theme.ColorNamePressed:
		return color.NRGBA{R: 0x6c, G: 0xb6, B: 0xff, A: 0x40}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x6c, G: 0xb6, B: 0xff, A: 0x44}
	case theme.ColorNameForeground:
		return color.NRGBA{R: 0xf2, G: 0xf4, B: 0xf8, A: 0xff}
	case theme.ColorNamePlaceHolder:
		return color.NRGBA{R: 0xa9, G: 0xb3, B: 0xc2, A: 0xff}
	case theme.ColorNameError:
		return color.NRGBA{R: 0xff, G: 0x82, B: 0x82, A: 0xff}
	case theme.ColorNameSuccess:
		return color.NRGBA{R: 0x7f, G: 0xd4, B: 0xa8, A: 0xff}
	}
	return t.base.Color(name, variant)
}

func (t *loggerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *loggerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *loggerTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding, theme.SizeNameInnerPadding, theme.SizeNameInputRadius:
		return 8
	}
	return t.base.Size(name)
}

var inputLabels = [inputlog.NumInputs]string{
	"Left", "Right", "Up", "Down", "Jump", "Dash",
	"Attack", "Super Dash", "Dream Nail", "Cast", "Focus",
}

func statusText(status inputlog.Status) string {
	if !status.Logging {
		return "Idle"
	}
	return fmt.Sprintf("Logging %s (%d lines)", status.Session.Title(), status.Lines)
}

func modeText(controller bool) string {
	if controller {
		return "Mode: controller"
	}
	return "Mode: keyboard/mouse"
}

func heldText(state inputlog.State) string {
	active := state.Active()
	if len(active) == 0 {
		return "Held: -"
	}
	names := make([]string, len(active))
	for i, input := range active {
		names[i] = inputLabels[input]
	}
	return "Held: " + strings.Join(names, ", ")
}

func runUI(cfg runConfig) error {
	fApp := app.New()
	fApp.Settings().SetTheme(newLoggerTheme())

	window := fApp.NewWindow("Input Logger")
	window.Resize(fyne.NewSize(760, 560))
	window.CenterOnScreen()

	logGrid := widget.NewTextGrid()
	logScroll := container.NewVScroll(logGrid)
	logScroll.SetMinSize(fyne.NewSize(0, 150))

	const maxUILogLines = 50
	var logMu sync.Mutex
	logLines := make([]string, 0, maxUILogLines)
	debugLogs := debugLogsEnabled()
	appendLogLine := func(line string) {
		if !debugLogs {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}

		logMu.Lock()
		logLines = append(logLines, line)
		if len(logLines) > maxUILogLines {
			logLines = logLines[len(logLines)-maxUILogLines:]
		}
		logText := strings.Join(logLines, "\n")
		logMu.Unlock()

		fyne.Do(func() {
			logGrid.SetText(logText)
			logScroll.ScrollToBottom()
		})
	}
	logger := newSlogLogger(cfg.logLevel, appendLogLine)

	// Name and boss are read when a session starts, including from the
	// hotkey goroutine.
	var sessionName, sessionBoss atomic.Value
	sessionName.Store(cfg.name)
	sessionBoss.Store(cfg.boss)
	currentSession := func() inputlog.SessionInfo {
		return inputlog.SessionInfo{
			Name: sessionName.Load().(string),
			Boss: sessionBoss.Load().(string),
		}
	}

	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Player or run name")
	nameEntry.SetText(cfg.name)
	nameEntry.OnChanged = func(v string) { sessionName.Store(v) }
	bossEntry := widget.NewEntry()
	bossEntry.SetPlaceHolder("Boss")
	bossEntry.SetText(cfg.boss)
	bossEntry.OnChanged = func(v string) { sessionBoss.Store(v) }

	statusLabel := widget.NewLabel(statusText(inputlog.Status{}))
	statusLabel.TextStyle = fyne.TextStyle{Bold: true}
	modeLabel := widget.NewLabel(modeText(cfg.controllerMode))
	heldLabel := widget.NewLabel(heldText(inputlog.State{}))
	errorText := canvas.NewText("", theme.Color(theme.ColorNameError))
	initProgress := widget.NewProgressBarInfinite()
	initProgress.Hide()

	showError := func(text string) {
		errorText.Text = text
		errorText.Refresh()
		if text != "" {
			appendLogLine("ERROR " + text)
		}
	}

	startBtn := widget.NewButton("Start", nil)
	startBtn.Importance = widget.HighImportance
	stopBtn := widget.NewButton("Stop", nil)
	modeBtn := widget.NewButton("Toggle Controller Mode", nil)
	startBtn.Disable()
	stopBtn.Disable()
	modeBtn.Disable()

	var bindButtons [inputlog.NumInputs]*widget.Button
	for _, input := range inputlog.Inputs() {
		bindButtons[input] = widget.NewButton(displayCodeName(cfg.bindings[input]), nil)
		bindButtons[input].Disable()
	}

	var stateMu sync.Mutex
	var running *loggerApp
	closed := false
	getApp := func() *loggerApp {
		stateMu.Lock()
		defer stateMu.Unlock()
		return running
	}

	persistUISettings := func() {
		a := getApp()
		if a == nil {
			return
		}
		svc := a.Service()
		session := currentSession()
		if err := persistSettings(cfg, svc.Bindings(), svc.ControllerMode(), session.Name, session.Boss); err != nil {
			showError(fmt.Sprintf("Failed to save settings: %v", err))
		}
	}

	setLoggingUI := func(logging bool) {
		if logging {
			startBtn.Disable()
			stopBtn.Enable()
			return
		}
		startBtn.Enable()
		stopBtn.Disable()
	}

	handleNotice := func(n inputlog.Notice) {
		a := getApp()
		switch n.Kind {
		case inputlog.NoticeLogging:
			setLoggingUI(n.Logging)
			if n.Logging {
				showError("")
			}
		case inputlog.NoticeMode:
			modeLabel.SetText(modeText(n.ControllerMode))
			persistUISettings()
		case inputlog.NoticeRebindStarted:
			bindButtons[n.Input].SetText("Press a key or button (Esc cancels)")
		case inputlog.NoticeRebindCancelled:
			if a != nil {
				bindButtons[n.Input].SetText(displayCodeName(a.Service().Bindings()[n.Input]))
			}
		case inputlog.NoticeBinding:
			bindButtons[n.Input].SetText(displayCodeName(n.Code))
			appendLogLine(fmt.Sprintf("INFO Bound %s to %s", n.Input, formatCodeName(n.Code)))
			persistUISettings()
		case inputlog.NoticeError:
			if n.Err == nil {
				showError("")
				return
			}
			showError(n.Err.Error())
		}
	}
	notify := func(n inputlog.Notice) {
		fyne.Do(func() { handleNotice(n) })
	}

	startBtn.OnTapped = func() {
		a := getApp()
		if a == nil {
			return
		}
		if err := a.Service().StartLogging(currentSession()); err != nil {
			showError(err.Error())
			return
		}
		persistUISettings()
	}
	stopBtn.OnTapped = func() {
		if a := getApp(); a != nil {
			a.Service().StopLogging()
		}
	}
	modeBtn.OnTapped = func() {
		if a := getApp(); a != nil {
			a.Service().ToggleControllerMode()
		}
	}
	for _, input := range inputlog.Inputs() {
		bindButtons[input].OnTapped = func() {
			a := getApp()
			if a == nil {
				return
			}
			if err := a.Service().BeginRebind(input); err != nil {
				showError(err.Error())
			}
		}
	}

	stopStatus := make(chan struct{})
	runStatusLoop := func(svc *inputlog.Service) {
		ticker := time.NewTicker(statusRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-stopStatus:
				return
			case <-ticker.C:
				status := svc.Status()
				fyne.Do(func() {
					statusLabel.SetText(statusText(status))
					heldLabel.SetText(heldText(status.State))
				})
			}
		}
	}

	var closeOnce sync.Once
	cleanup := func() {
		closeOnce.Do(func() {
			close(stopStatus)
			stateMu.Lock()
			a := running
			running = nil
			closed = true
			stateMu.Unlock()
			if a != nil {
				a.Stop()
			}
		})
	}

	quit := func() {
		persistUISettings()
		cleanup()
		if currentApp := fyne.CurrentApp(); currentApp != nil {
			currentApp.Quit()
			return
		}
		window.SetCloseIntercept(nil)
		window.Close()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			fyne.Do(quit)
		}
	}()
	window.SetCloseIntercept(quit)

	titleText := canvas.NewText("INPUT LOGGER", color.NRGBA{R: 0x6c, G: 0xb6, B: 0xff, A: 0xff})
	titleText.TextStyle = fyne.TextStyle{Bold: true}
	titleText.TextSize = 26

	accentLine := canvas.NewRectangle(color.NRGBA{R: 0x6c, G: 0xb6, B: 0xff, A: 0xff})
	accentLine.SetMinSize(fyne.NewSize(220, 3))

	sessionCard := widget.NewCard("Session", "", widget.NewForm(
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Boss", bossEntry),
	))

	leftBindings := widget.NewForm()
	rightBindings := widget.NewForm()
	for _, input := range inputlog.Inputs() {
		item := widget.NewFormItem(inputLabels[input], bindButtons[input])
		if int(input) < (inputlog.NumInputs+1)/2 {
			leftBindings.AppendItem(item)
		} else {
			rightBindings.AppendItem(item)
		}
	}
	bindingsCard := widget.NewCard("Bindings", "", container.NewGridWithColumns(2, leftBindings, rightBindings))

	controls := container.NewGridWithColumns(3, startBtn, stopBtn, modeBtn)
	statusRow := container.NewHBox(statusLabel, widget.NewSeparator(), modeLabel)

	mainContent := container.NewVBox(
		titleText,
		accentLine,
		sessionCard,
		bindingsCard,
		statusRow,
		heldLabel,
		errorText,
		initProgress,
		controls,
	)
	mainPanel := container.NewPadded(mainContent)

	var rootContent fyne.CanvasObject = mainPanel
	if debugLogs {
		logsCard := widget.NewCard("Logs", "", logScroll)
		split := container.NewVSplit(mainPanel, logsCard)
		split.SetOffset(0.72)
		rootContent = split
	}

	initProgress.Show()
	appendLogLine("INFO Initializing input devices...")
	go func() {
		a, err := startApp(cfg, logger, notify)
		if err != nil {
			fyne.Do(func() {
				initProgress.Hide()
				showError(userError(err).Error())
			})
			return
		}
		svc := a.Service()
		svc.SetSessionSource(currentSession)

		stateMu.Lock()
		if closed {
			stateMu.Unlock()
			a.Stop()
			return
		}
		running = a
		stateMu.Unlock()
		go runStatusLoop(svc)

		fyne.Do(func() {
			initProgress.Hide()
			setLoggingUI(svc.IsLogging())
			modeBtn.Enable()
			bindings := svc.Bindings()
			for _, input := range inputlog.Inputs() {
				bindButtons[input].SetText(displayCodeName(bindings[input]))
				bindButtons[input].Enable()
			}
			appendLogLine("INFO Ready. Press " + formatCodeName(cfg.hotkeyCode) + " or Start to log")
		})
	}()

	window.SetContent(rootContent)
	window.ShowAndRun()
	cleanup()
	return nil
}
