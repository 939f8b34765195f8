package linuxinput

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		caps     Capabilities
		expected DeviceClass
	}{
		{
			name:     "keyboard",
			caps:     Capabilities{Keys: []evdev.EvCode{evdev.KEY_ESC, evdev.KEY_A, evdev.KEY_Z, evdev.KEY_SPACE, evdev.KEY_ENTER}},
			expected: ClassKeyboard,
		},
		{
			name: "mouse",
			caps: Capabilities{
				Keys: []evdev.EvCode{evdev.BTN_LEFT, evdev.BTN_RIGHT, evdev.BTN_MIDDLE},
				Rel:  []evdev.EvCode{evdev.REL_X, evdev.REL_Y, evdev.REL_WHEEL},
			},
			expected: ClassPointer,
		},
		{
			name: "xbox pad",
			caps: Capabilities{
				Keys: []evdev.EvCode{evdev.BTN_SOUTH, evdev.BTN_EAST, evdev.BTN_NORTH, evdev.BTN_WEST, evdev.BTN_TL, evdev.BTN_TR, evdev.BTN_MODE},
				Abs:  []evdev.EvCode{evdev.ABS_X, evdev.ABS_Y, evdev.ABS_Z, evdev.ABS_RX, evdev.ABS_RY, evdev.ABS_RZ},
			},
			expected: ClassGamepad,
		},
		{
			name: "keyboard with media receiver",
			caps: Capabilities{
				Keys: []evdev.EvCode{evdev.KEY_A, evdev.KEY_Z, evdev.KEY_SPACE, evdev.BTN_LEFT},
				Rel:  []evdev.EvCode{evdev.REL_X, evdev.REL_Y},
			},
			expected: ClassKeyboard,
		},
		{
			name:     "power button",
			caps:     Capabilities{Keys: []evdev.EvCode{evdev.KEY_POWER}},
			expected: ClassOther,
		},
	}

	for _, tc := range tests {
		if got := Classify(tc.caps); got != tc.expected {
			t.Fatalf("%s: Classify()=%v, want %v", tc.name, got, tc.expected)
		}
	}
}
