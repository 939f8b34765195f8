package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"inputlogger/internal/core/inputlog"
	"inputlogger/internal/tui"
)

func runTUI(cfg runConfig) error {
	// Notices may be emitted from the program's own goroutine, so sends
	// never block.
	events := make(chan tui.Event, 256)
	push := func(ev tui.Event) {
		select {
		case events <- ev:
		default:
		}
	}

	logger := newSinkLogger(cfg.logLevel, func(line string) { push(tui.Event{Log: line}) })
	app, err := startApp(cfg, logger, func(n inputlog.Notice) { push(tui.Event{Notice: &n}) })
	if err != nil {
		return err
	}
	defer app.Stop()

	svc := app.Service()
	model := tui.NewModel(svc, events, cfg.name, cfg.boss, formatCodeName(cfg.hotkeyCode))
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	session := model.Session()
	if err := persistSettings(cfg, svc.Bindings(), svc.ControllerMode(), session.Name, session.Boss); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
