package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"inputlogger/internal/adapters/linuxinput"
	"inputlogger/internal/core/inputlog"
)

// Settings maps the TOML settings file. Unset scalars stay nil so that
// command-line flags and defaults can fill them.
type Settings struct {
	Output         *string  `toml:"output"`
	Rate           *float64 `toml:"rate"`
	Backend        *string  `toml:"backend"`
	Gamepad        *string  `toml:"gamepad"`
	Devices        []string `toml:"devices,omitempty"`
	Hotkey         *string  `toml:"hotkey"`
	Latch          *bool    `toml:"latch"`
	ControllerMode *bool    `toml:"controller-mode"`
	Name           *string  `toml:"name"`
	Boss           *string  `toml:"boss"`

	// Bindings maps input names to code names, e.g. jump = "KEY_SPACE".
	Bindings   map[string]string  `toml:"bindings,omitempty"`
	Controller ControllerSettings `toml:"controller"`
}

// ControllerSettings overrides entries of the default controller map. An
// input of "none" removes the default entry for that code.
type ControllerSettings struct {
	Buttons  map[string]string        `toml:"buttons,omitempty"`
	Triggers map[string]string        `toml:"triggers,omitempty"`
	Sticks   map[string]StickSettings `toml:"sticks,omitempty"`
}

type StickSettings struct {
	Negative string `toml:"negative"`
	Positive string `toml:"positive"`
}

// Load reads settings from path. A missing file is not an error.
func Load(path string) (Settings, error) {
	if path == "" {
		return Settings{}, fmt.Errorf("settings path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("failed to stat settings: %w", err)
	}
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path through a temporary file and a rename.
func Save(path string, s Settings) error {
	if path == "" {
		return fmt.Errorf("settings path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# inputlogger settings. Command-line flags override these values.\n")
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}

// BindingTable applies the configured bindings on top of the defaults.
func (s Settings) BindingTable() (inputlog.Bindings, error) {
	bindings := inputlog.DefaultBindings()
	for _, name := range sortedKeys(s.Bindings) {
		input, err := inputlog.ParseInput(name)
		if err != nil {
			return bindings, fmt.Errorf("bindings: %w", err)
		}
		code, err := linuxinput.ParseCode(s.Bindings[name])
		if err != nil {
			return bindings, fmt.Errorf("bindings.%s: %w", name, err)
		}
		bindings[input] = code
	}
	return bindings, nil
}

// SetBindings stores the whole table by code name.
func (s *Settings) SetBindings(bindings inputlog.Bindings) {
	s.Bindings = make(map[string]string, inputlog.NumInputs)
	for _, input := range inputlog.Inputs() {
		s.Bindings[input.String()] = linuxinput.FormatCodeName(bindings[input])
	}
}

// ControllerMap applies the configured overrides on top of the default
// controller mapping.
func (s Settings) ControllerMap() (inputlog.ControllerMap, error) {
	mapping := inputlog.DefaultControllerMap()

	for _, raw := range sortedKeys(s.Controller.Buttons) {
		code, err := linuxinput.ParseCode(raw)
		if err != nil {
			return mapping, fmt.Errorf("controller.buttons: %w", err)
		}
		if err := assign(mapping.Buttons, code, s.Controller.Buttons[raw]); err != nil {
			return mapping, fmt.Errorf("controller.buttons.%s: %w", raw, err)
		}
	}
	for _, raw := range sortedKeys(s.Controller.Triggers) {
		code, err := linuxinput.ParseAbsCode(raw)
		if err != nil {
			return mapping, fmt.Errorf("controller.triggers: %w", err)
		}
		if err := assign(mapping.Triggers, code, s.Controller.Triggers[raw]); err != nil {
			return mapping, fmt.Errorf("controller.triggers.%s: %w", raw, err)
		}
	}
	for _, raw := range sortedKeys(s.Controller.Sticks) {
		code, err := linuxinput.ParseAbsCode(raw)
		if err != nil {
			return mapping, fmt.Errorf("controller.sticks: %w", err)
		}
		stick := s.Controller.Sticks[raw]
		negative, err := parseOptionalInput(stick.Negative)
		if err != nil {
			return mapping, fmt.Errorf("controller.sticks.%s.negative: %w", raw, err)
		}
		positive, err := parseOptionalInput(stick.Positive)
		if err != nil {
			return mapping, fmt.Errorf("controller.sticks.%s.positive: %w", raw, err)
		}
		if negative == inputlog.NoInput && positive == inputlog.NoInput {
			delete(mapping.Sticks, code)
			continue
		}
		mapping.Sticks[code] = inputlog.StickMapping{Negative: negative, Positive: positive}
	}
	return mapping, nil
}

func assign(table map[uint16]inputlog.Input, code uint16, name string) error {
	input, err := parseOptionalInput(name)
	if err != nil {
		return err
	}
	if input == inputlog.NoInput {
		delete(table, code)
		return nil
	}
	table[code] = input
	return nil
}

func parseOptionalInput(name string) (inputlog.Input, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return inputlog.NoInput, nil
	}
	return inputlog.ParseInput(name)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
