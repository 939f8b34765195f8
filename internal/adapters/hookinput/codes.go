package hookinput

import (
	hook "github.com/robotn/gohook"

	"inputlogger/internal/core/inputlog"
)

// Keycodes below 0x59 are set-1 scancodes, which evdev KEY_* codes share.
const maxScancode = 0x58

// Extended virtual keycodes and their evdev equivalents.
var extendedKeys = map[uint16]uint16{
	0x0E1C: 96,  // KP enter
	0x0E1D: 97,  // right ctrl
	0x0E35: 98,  // KP divide
	0x0E37: 99,  // print screen
	0x0E38: 100, // right alt
	0x0E45: 119, // pause
	0x0E47: 102, // home
	0xE048: 103, // up
	0x0E49: 104, // page up
	0xE04B: 105, // left
	0xE04D: 106, // right
	0x0E4F: 107, // end
	0xE050: 108, // down
	0x0E51: 109, // page down
	0x0E52: 110, // insert
	0x0E53: 111, // delete
	0x0E5B: 125, // left meta
	0x0E5C: 126, // right meta
	0x0E5D: 127, // menu
	0xEE48: 103,
	0xEE4B: 105,
	0xEE4D: 106,
	0xEE50: 108,
}

// Mouse buttons as numbered by the hook.
var mouseButtons = map[uint16]uint16{
	1: inputlog.CodeBtnLeft,
	2: inputlog.CodeBtnRight,
	3: inputlog.CodeBtnMiddle,
	4: 0x113,
	5: 0x114,
}

// KeyCode converts a hook keycode to an evdev KEY_* code.
func KeyCode(keycode uint16) (uint16, bool) {
	if keycode > 0 && keycode <= maxScancode {
		return keycode, true
	}
	code, ok := extendedKeys[keycode]
	return code, ok
}

func ButtonCode(button uint16) (uint16, bool) {
	code, ok := mouseButtons[button]
	return code, ok
}

// Translate maps a hook event to a key event. Typed-character, motion and
// wheel events have no equivalent.
func Translate(ev hook.Event) (inputlog.Event, bool) {
	var (
		code uint16
		ok   bool
		val  int32
	)
	switch ev.Kind {
	case hook.KeyHold:
		code, ok = KeyCode(ev.Keycode)
		val = 1
	case hook.KeyUp:
		code, ok = KeyCode(ev.Keycode)
	// MouseHold and MouseDown are the hook's press and release.
	case hook.MouseHold:
		code, ok = ButtonCode(ev.Button)
		val = 1
	case hook.MouseDown:
		code, ok = ButtonCode(ev.Button)
	}
	if !ok {
		return inputlog.Event{}, false
	}
	return inputlog.Event{Type: inputlog.EventTypeKey, Code: code, Value: val}, true
}
