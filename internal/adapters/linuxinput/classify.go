package linuxinput

import (
	evdev "github.com/holoplot/go-evdev"
)

type DeviceClass int

const (
	ClassOther DeviceClass = iota
	ClassKeyboard
	ClassPointer
	ClassGamepad
)

func (c DeviceClass) String() string {
	switch c {
	case ClassKeyboard:
		return "keyboard"
	case ClassPointer:
		return "mouse"
	case ClassGamepad:
		return "gamepad"
	default:
		return "other"
	}
}

// Capabilities is the subset of a device's advertised event codes used for
// classification.
type Capabilities struct {
	Keys []evdev.EvCode
	Abs  []evdev.EvCode
	Rel  []evdev.EvCode
}

// Classify puts gamepads first since many pads also expose a few KEY_* codes
// and absolute axes, and keyboards before pointers since combo receivers
// expose both.
func Classify(caps Capabilities) DeviceClass {
	var (
		hasGamepadButton bool
		hasLetterKeys    int
		hasMouseButton   bool
		hasRelX, hasRelY bool
		hasAbsStick      bool
	)
	for _, code := range caps.Keys {
		switch {
		case code >= evdev.BTN_GAMEPAD && code <= evdev.BTN_THUMBR:
			hasGamepadButton = true
		case code >= evdev.BTN_JOYSTICK && code < evdev.BTN_GAMEPAD:
			hasGamepadButton = true
		case code >= evdev.BTN_MOUSE && code <= evdev.BTN_TASK:
			hasMouseButton = true
		case code == evdev.KEY_A || code == evdev.KEY_Z || code == evdev.KEY_SPACE || code == evdev.KEY_ENTER:
			hasLetterKeys++
		}
	}
	for _, code := range caps.Abs {
		if code == evdev.ABS_X || code == evdev.ABS_Y {
			hasAbsStick = true
		}
	}
	for _, code := range caps.Rel {
		if code == evdev.REL_X {
			hasRelX = true
		}
		if code == evdev.REL_Y {
			hasRelY = true
		}
	}

	switch {
	case hasGamepadButton && hasAbsStick:
		return ClassGamepad
	case hasGamepadButton && !hasMouseButton && hasLetterKeys == 0:
		return ClassGamepad
	case hasLetterKeys >= 3:
		return ClassKeyboard
	case hasMouseButton || (hasRelX && hasRelY):
		return ClassPointer
	default:
		return ClassOther
	}
}
