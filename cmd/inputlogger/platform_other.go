//go:build !linux

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"inputlogger/internal/adapters/hookinput"
	"inputlogger/internal/adapters/linuxinput"
	"inputlogger/internal/adapters/sdlpad"
	"inputlogger/internal/core/inputlog"
)

func formatCodeName(code uint16) string {
	return linuxinput.FormatCodeName(code)
}

func displayCodeName(code uint16) string {
	return linuxinput.DisplayName(code)
}

func permissionDeniedHint() string {
	return "Permission denied opening the input hook. Grant the terminal accessibility/input monitoring access."
}

func listInputDevices(_ io.Writer) error {
	return fmt.Errorf("input device listing is not supported on this platform")
}

func startHotkey(_ runConfig, _ func(), _ *slog.Logger) (hotkeyGrab, error) {
	return nil, nil
}

func startSources(cfg runConfig, svc *inputlog.Service, logger *slog.Logger) ([]stopper, error) {
	if cfg.backend == "evdev" || cfg.gamepad == "evdev" {
		return nil, fmt.Errorf("evdev input is only available on Linux")
	}

	source, err := hookinput.NewSource(svc, logger)
	if err != nil {
		return nil, err
	}
	if err := source.Start(); err != nil {
		return nil, err
	}
	sources := []stopper{source}

	if cfg.gamepad == "none" {
		return sources, nil
	}
	pad, err := sdlpad.NewSource(svc, logger)
	if err != nil {
		source.Stop()
		return nil, err
	}
	if err := pad.Start(); err != nil {
		if cfg.gamepad == "sdl" {
			source.Stop()
			return nil, err
		}
		logger.Warn("Gamepad input unavailable", "err", err)
		return sources, nil
	}
	return append(sources, pad), nil
}

func captureNextCode(_ context.Context, _ string, _ []string) (uint16, error) {
	return 0, fmt.Errorf("capturing a binding is not supported on this platform; edit the settings file instead")
}
