package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"inputlogger/internal/adapters/linuxinput"
	"inputlogger/internal/config"
	"inputlogger/internal/core/inputlog"
)

const (
	defaultOutput  = "output.txt"
	defaultRate    = inputlog.DefaultRate
	defaultBackend = "auto"
	defaultGamepad = "auto"
	defaultHotkey  = "KEY_F4"
)

type options struct {
	configPath     string
	logLevel       string
	output         string
	rate           float64
	backend        string
	gamepad        string
	devices        []string
	hotkey         string
	latch          bool
	controllerMode bool
	cli            bool
}

type runConfig struct {
	settingsPath string
	settings     config.Settings
	dbPath       string

	output         string
	rate           float64
	backend        string
	gamepad        string
	devices        []string
	hotkeyCode     uint16
	latch          bool
	controllerMode bool
	name           string
	boss           string
	bindings       inputlog.Bindings
	controller     inputlog.ControllerMap
	logLevel       slog.Level
}

func (c runConfig) serviceConfig() inputlog.Config {
	return inputlog.Config{
		Bindings:       c.bindings,
		Controller:     c.controller,
		WriteInterval:  inputlog.RateInterval(c.rate),
		SampleInterval: inputlog.RateInterval(c.rate),
		HotkeyCode:     c.hotkeyCode,
		HotkeyInStream: true,
		Latch:          c.latch,
		ControllerMode: c.controllerMode,
		Output:         c.output,
	}
}

func settingsPath(opts *options) string {
	if strings.TrimSpace(opts.configPath) != "" {
		return opts.configPath
	}
	return config.DefaultSettingsPath()
}

// resolveConfig layers flags over the settings file over defaults. A flag
// wins only when it was set explicitly.
func resolveConfig(cmd *cobra.Command, opts *options) (runConfig, error) {
	path := settingsPath(opts)
	fileCfg, err := config.Load(path)
	if err != nil {
		return runConfig{}, fmt.Errorf("failed to load settings: %w", err)
	}

	applyStringConfig(cmd, "output", &opts.output, fileCfg.Output)
	applyFloatConfig(cmd, "rate", &opts.rate, fileCfg.Rate)
	applyStringConfig(cmd, "backend", &opts.backend, fileCfg.Backend)
	applyStringConfig(cmd, "gamepad", &opts.gamepad, fileCfg.Gamepad)
	applyStringConfig(cmd, "hotkey", &opts.hotkey, fileCfg.Hotkey)
	applyBoolConfig(cmd, "latch", &opts.latch, fileCfg.Latch)
	applyBoolConfig(cmd, "controller", &opts.controllerMode, fileCfg.ControllerMode)
	if len(fileCfg.Devices) > 0 && !flagChanged(cmd, "device") {
		opts.devices = fileCfg.Devices
	}

	cfg := runConfig{
		settingsPath:   path,
		settings:       fileCfg,
		dbPath:         config.DefaultDBPath(),
		output:         strings.TrimSpace(opts.output),
		rate:           opts.rate,
		devices:        opts.devices,
		latch:          opts.latch,
		controllerMode: opts.controllerMode,
	}
	if fileCfg.Name != nil {
		cfg.name = *fileCfg.Name
	}
	if fileCfg.Boss != nil {
		cfg.boss = *fileCfg.Boss
	}

	if cfg.output == "" {
		return cfg, fmt.Errorf("--output must not be empty")
	}
	if cfg.rate <= 0 {
		return cfg, fmt.Errorf("--rate must be > 0")
	}
	if cfg.backend, err = parseBackendChoice(opts.backend); err != nil {
		return cfg, err
	}
	if cfg.gamepad, err = parseGamepadChoice(opts.gamepad); err != nil {
		return cfg, err
	}
	if cfg.hotkeyCode, err = linuxinput.ParseCode(opts.hotkey); err != nil {
		return cfg, fmt.Errorf("--hotkey: %w", err)
	}
	if cfg.logLevel, err = parseLogLevel(opts.logLevel); err != nil {
		return cfg, err
	}
	if cfg.bindings, err = fileCfg.BindingTable(); err != nil {
		return cfg, fmt.Errorf("settings %s: %w", path, err)
	}
	if cfg.controller, err = fileCfg.ControllerMap(); err != nil {
		return cfg, fmt.Errorf("settings %s: %w", path, err)
	}
	return cfg, nil
}

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = defaultBackend
	}
	switch backend {
	case "auto", "evdev", "hook":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (expected auto|evdev|hook)", value)
	}
}

func parseGamepadChoice(value string) (string, error) {
	gamepad := strings.ToLower(strings.TrimSpace(value))
	if gamepad == "" {
		gamepad = defaultGamepad
	}
	switch gamepad {
	case "auto", "evdev", "sdl", "none":
		return gamepad, nil
	default:
		return "", fmt.Errorf("invalid --gamepad %q (expected auto|evdev|sdl|none)", value)
	}
}

// persistSettings writes the runtime choices a user can change from the
// window or terminal back to the settings file.
func persistSettings(cfg runConfig, bindings inputlog.Bindings, controllerMode bool, name, boss string) error {
	s := cfg.settings
	s.SetBindings(bindings)
	s.ControllerMode = &controllerMode
	s.Name = &name
	s.Boss = &boss
	return config.Save(cfg.settingsPath, s)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}
