package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inputlogger/internal/core/inputlog"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Nil(t, s.Output)
	assert.Empty(t, s.Bindings)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	content := `
output = "/tmp/run.txt"
rate = 20.0
hotkey = "KEY_F8"
latch = true
name = "Zote"

[bindings]
jump = "KEY_Z"
attack = "BTN_LEFT"

[controller.triggers]
ABS_Z = "none"

[controller.sticks.ABS_RX]
negative = "left"
positive = "right"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, s.Output)
	assert.Equal(t, "/tmp/run.txt", *s.Output)
	require.NotNil(t, s.Rate)
	assert.InDelta(t, 20.0, *s.Rate, 1e-9)
	require.NotNil(t, s.Latch)
	assert.True(t, *s.Latch)
	assert.Nil(t, s.Boss)

	bindings, err := s.BindingTable()
	require.NoError(t, err)
	assert.Equal(t, uint16(44), bindings[inputlog.Jump])
	assert.Equal(t, inputlog.CodeBtnLeft, bindings[inputlog.Attack])
	assert.Equal(t, inputlog.CodeKeyLeft, bindings[inputlog.Left])

	mapping, err := s.ControllerMap()
	require.NoError(t, err)
	_, hasLeftTrigger := mapping.Triggers[inputlog.CodeAbsZ]
	assert.False(t, hasLeftTrigger)
	assert.Equal(t, inputlog.Dash, mapping.Triggers[inputlog.CodeAbsRZ])
	assert.Equal(t, inputlog.StickMapping{Negative: inputlog.Left, Positive: inputlog.Right}, mapping.Sticks[inputlog.CodeAbsRX])
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("rate = \"fast\"\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")
	output := "/tmp/run.txt"
	controller := true

	var s Settings
	s.Output = &output
	s.ControllerMode = &controller
	bindings := inputlog.DefaultBindings()
	bindings[inputlog.Focus] = inputlog.CodeBtnRight
	s.SetBindings(bindings)
	require.NoError(t, Save(path, s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded.Output)
	assert.Equal(t, output, *loaded.Output)
	require.NotNil(t, loaded.ControllerMode)
	assert.True(t, *loaded.ControllerMode)
	assert.Nil(t, loaded.Rate)
	assert.Equal(t, "BTN_RIGHT", loaded.Bindings["focus"])

	table, err := loaded.BindingTable()
	require.NoError(t, err)
	assert.Equal(t, bindings, table)
}

func TestBindingTableErrors(t *testing.T) {
	_, err := Settings{Bindings: map[string]string{"parry": "KEY_A"}}.BindingTable()
	require.Error(t, err)

	_, err = Settings{Bindings: map[string]string{"jump": "KEY_NOPE"}}.BindingTable()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bindings.jump")
}

func TestControllerMapOverrides(t *testing.T) {
	s := Settings{Controller: ControllerSettings{
		Buttons: map[string]string{
			"BTN_SOUTH": "dash",
			"BTN_NORTH": "none",
		},
		Sticks: map[string]StickSettings{"ABS_Y": {}},
	}}
	mapping, err := s.ControllerMap()
	require.NoError(t, err)
	assert.Equal(t, inputlog.Dash, mapping.Buttons[inputlog.CodeBtnSouth])
	_, ok := mapping.Buttons[inputlog.CodeBtnNorth]
	assert.False(t, ok)
	_, ok = mapping.Sticks[inputlog.CodeAbsY]
	assert.False(t, ok)
	assert.Equal(t, inputlog.StickMapping{Negative: inputlog.Left, Positive: inputlog.Right}, mapping.Sticks[inputlog.CodeAbsX])

	_, err = Settings{Controller: ControllerSettings{Triggers: map[string]string{"ABS_Z": "parry"}}}.ControllerMap()
	require.Error(t, err)
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/cfg", "inputlogger", "settings.toml"), DefaultSettingsPath())
	assert.Equal(t, filepath.Join("/data", "inputlogger", "sessions.db"), DefaultDBPath())
}
