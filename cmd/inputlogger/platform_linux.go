//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"inputlogger/internal/adapters/hookinput"
	"inputlogger/internal/adapters/linuxinput"
	"inputlogger/internal/adapters/sdlpad"
	"inputlogger/internal/adapters/x11input"
	"inputlogger/internal/core/inputlog"
)

func formatCodeName(code uint16) string {
	return linuxinput.FormatCodeName(code)
}

func displayCodeName(code uint16) string {
	return linuxinput.DisplayName(code)
}

func permissionDeniedHint() string {
	return "Permission denied reading /dev/input. Add your user to the input group (or run as root), or use --backend hook on an X11 session."
}

func listInputDevices(w io.Writer) error {
	devices, err := linuxinput.ListInputDevices()
	if err != nil {
		return err
	}
	for _, dev := range devices {
		virtualTag := "physical"
		if dev.IsVirtual {
			virtualTag = "virtual"
		}
		fmt.Fprintf(w, "%s: %s [%s, %s]\n", dev.Path, dev.Name, virtualTag, dev.Class)
	}
	return nil
}

// resolveSessionType reports "x11" or "wayland" for the current desktop
// session; console sessions count as wayland since only evdev works there.
func resolveSessionType() string {
	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	switch sessionType {
	case "wayland":
		return "wayland"
	case "x11":
		return "x11"
	}

	if strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" {
		return "wayland"
	}
	if strings.TrimSpace(os.Getenv("DISPLAY")) != "" {
		return "x11"
	}
	return "wayland"
}

// startHotkey registers the hotkey as a passive X11 grab on X11 sessions.
// A nil grab means the service must find the hotkey in the event stream.
func startHotkey(cfg runConfig, onPress func(), logger *slog.Logger) (hotkeyGrab, error) {
	if resolveSessionType() != "x11" || !x11input.Available() {
		return nil, nil
	}
	hotkey, err := x11input.NewHotkey(cfg.hotkeyCode, onPress, logger)
	if err != nil {
		return nil, err
	}
	return hotkey, nil
}

// startSources starts the keyboard/mouse source and the gamepad source
// chosen by cfg. With --backend auto, evdev is preferred and the hook is
// used when /dev/input is not readable.
func startSources(cfg runConfig, svc *inputlog.Service, logger *slog.Logger) ([]stopper, error) {
	backend := cfg.backend
	padsFromEvdev := cfg.gamepad == "evdev" || (cfg.gamepad == "auto" && backend != "hook")

	var sources []stopper
	stopAll := func() {
		for i := len(sources) - 1; i >= 0; i-- {
			sources[i].Stop()
		}
	}

	if backend == "auto" || backend == "evdev" {
		runtime, pads, err := startEvdevRuntime(cfg.devices, linuxinput.SelectOptions{Keys: true, Gamepad: padsFromEvdev}, svc, logger)
		switch {
		case err == nil:
			sources = append(sources, runtime)
			logger.Info("Backend", "name", "evdev", "gamepads", pads)
			if pads == 0 && cfg.gamepad == "auto" {
				padsFromEvdev = false
			}
		case backend == "auto" && isPermissionError(err):
			logger.Warn("Cannot read /dev/input, falling back to the input hook", "err", err)
			backend = "hook"
			padsFromEvdev = false
		default:
			return nil, err
		}
	}

	if backend == "hook" {
		source, err := hookinput.NewSource(svc, logger)
		if err != nil {
			return nil, err
		}
		if err := source.Start(); err != nil {
			return nil, err
		}
		sources = append(sources, source)
		logger.Info("Backend", "name", "hook")

		if cfg.gamepad == "evdev" {
			runtime, _, err := startEvdevRuntime(cfg.devices, linuxinput.SelectOptions{Gamepad: true}, svc, logger)
			if err != nil {
				stopAll()
				return nil, err
			}
			sources = append(sources, runtime)
		}
	}

	useSDL := cfg.gamepad == "sdl" || (cfg.gamepad == "auto" && !padsFromEvdev)
	if useSDL {
		pad, err := sdlpad.NewSource(svc, logger)
		if err != nil {
			stopAll()
			return nil, err
		}
		if err := pad.Start(); err != nil {
			if cfg.gamepad == "sdl" {
				stopAll()
				return nil, err
			}
			logger.Warn("Gamepad input unavailable", "err", err)
		} else {
			sources = append(sources, pad)
		}
	}
	return sources, nil
}

func startEvdevRuntime(paths []string, opts linuxinput.SelectOptions, svc *inputlog.Service, logger *slog.Logger) (*linuxinput.Runtime, int, error) {
	selection, err := linuxinput.OpenSourceSelection(paths, opts)
	if err != nil {
		return nil, 0, err
	}
	pads := selection.Count(linuxinput.RolePad)

	runtime, err := linuxinput.NewRuntime(selection, svc, logger)
	if err != nil {
		selection.Close()
		return nil, 0, err
	}
	if err := runtime.Start(); err != nil {
		runtime.Stop()
		return nil, 0, err
	}
	return runtime, pads, nil
}

// captureNextCode waits for the next key or button press from anywhere on
// the desktop, for binding from the command line.
func captureNextCode(ctx context.Context, backend string, devices []string) (uint16, error) {
	if backend != "evdev" && len(devices) == 0 && resolveSessionType() == "x11" && x11input.Available() {
		return x11input.CaptureNextKeyCode(ctx)
	}
	code, err := linuxinput.CaptureNextKeyCode(ctx, devices)
	if err != nil && backend == "auto" && isPermissionError(err) && x11input.Available() {
		return x11input.CaptureNextKeyCode(ctx)
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return 0, fmt.Errorf("no key or button pressed: %w", err)
	}
	return code, err
}
