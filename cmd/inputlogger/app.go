package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"inputlogger/internal/core/inputlog"
	"inputlogger/internal/store"
)

type stopper interface {
	Stop()
}

// hotkeyGrab is a hotkey registered outside the event stream.
type hotkeyGrab interface {
	Start() error
	Stop()
}

// loggerApp wires the service to its input sources, hotkey and session
// index, and drives it until Stop.
type loggerApp struct {
	svc     *inputlog.Service
	store   *store.Store
	sources []stopper
	hotkey  hotkeyGrab
	logger  *slog.Logger

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func startApp(cfg runConfig, logger *slog.Logger, notify func(inputlog.Notice)) (*loggerApp, error) {
	sink, err := inputlog.NewFileSink(cfg.output)
	if err != nil {
		return nil, err
	}

	app := &loggerApp{logger: logger, done: make(chan struct{})}
	svcCfg := cfg.serviceConfig()
	svcCfg.Notify = notify

	if st, err := store.Open(cfg.dbPath); err != nil {
		logger.Warn("Session index unavailable", "path", cfg.dbPath, "err", err)
	} else {
		app.store = st
		svcCfg.Recorder = st
	}

	// The grab only calls into the service once it has been started below.
	hotkey, err := startHotkey(cfg, func() { app.svc.Hotkey() }, logger)
	if err != nil {
		logger.Warn("Hotkey grab unavailable, detecting hotkey in the event stream", "err", err)
	}
	if hotkey != nil {
		app.hotkey = hotkey
		svcCfg.HotkeyInStream = false
	}

	svc, err := inputlog.NewService(svcCfg, sink, logger)
	if err != nil {
		app.closeResources()
		return nil, err
	}
	app.svc = svc

	sources, err := startSources(cfg, svc, logger)
	if err != nil {
		app.closeResources()
		return nil, err
	}
	app.sources = sources

	if app.hotkey != nil {
		if err := app.hotkey.Start(); err != nil {
			app.closeResources()
			return nil, fmt.Errorf("start hotkey: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	go func() {
		defer close(app.done)
		_ = svc.Run(ctx)
	}()

	logger.Info("Output", "path", sink.Path())
	logger.Info("Rate", "hz", cfg.rate)
	logger.Info("Hotkey", "name", formatCodeName(cfg.hotkeyCode), "grab", app.hotkey != nil)
	return app, nil
}

func (a *loggerApp) Service() *inputlog.Service {
	return a.svc
}

// Stop ends the active session, stops every source and closes the index.
func (a *loggerApp) Stop() {
	a.stopOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
			<-a.done
		}
		a.closeResources()
	})
}

func (a *loggerApp) closeResources() {
	for i := len(a.sources) - 1; i >= 0; i-- {
		a.sources[i].Stop()
	}
	a.sources = nil
	if a.hotkey != nil {
		a.hotkey.Stop()
		a.hotkey = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close session index", "err", err)
		}
		a.store = nil
	}
}
