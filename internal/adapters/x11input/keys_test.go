package x11input

import "testing"

func TestLinuxCodeToXKeyString(t *testing.T) {
	tests := []struct {
		code     uint16
		expected string
	}{
		{code: 62, expected: "F4"},
		{code: 57, expected: "space"},
		{code: 30, expected: "a"},
		{code: 2, expected: "1"},
		{code: 103, expected: "Up"},
		{code: 96, expected: "KP_Enter"},
		{code: 79, expected: "KP_1"},
	}
	for _, tc := range tests {
		got, ok := linuxCodeToXKeyString(tc.code)
		if !ok || got != tc.expected {
			t.Fatalf("linuxCodeToXKeyString(%d)=%q,%v, want %q,true", tc.code, got, ok, tc.expected)
		}
	}

	if _, ok := linuxCodeToXKeyString(0x110); ok {
		t.Fatalf("mouse buttons have no X11 keysym")
	}
}

func TestXLookupStringToLinuxCode(t *testing.T) {
	tests := []struct {
		lookup   string
		expected uint16
	}{
		{lookup: "F4", expected: 62},
		{lookup: "space", expected: 57},
		{lookup: "A", expected: 30},
		{lookup: "Escape", expected: 1},
		{lookup: "Left", expected: 105},
		{lookup: "KP_Add", expected: 78},
		{lookup: "kp_7", expected: 71},
	}
	for _, tc := range tests {
		got, ok := xLookupStringToLinuxCode(tc.lookup)
		if !ok || got != tc.expected {
			t.Fatalf("xLookupStringToLinuxCode(%q)=%d,%v, want %d,true", tc.lookup, got, ok, tc.expected)
		}
	}

	for _, lookup := range []string{"", "  ", "XF86AudioPlay"} {
		if _, ok := xLookupStringToLinuxCode(lookup); ok {
			t.Fatalf("xLookupStringToLinuxCode(%q) should not resolve", lookup)
		}
	}
}

func TestMouseButtonMapping(t *testing.T) {
	for button := range xButtons {
		code, ok := xButtonToCode(button)
		if !ok {
			t.Fatalf("xButtonToCode(%d) did not resolve", button)
		}
		back, ok := codeToXButton(code)
		if !ok || back != button {
			t.Fatalf("codeToXButton(%d)=%d,%v, want %d,true", code, back, ok, button)
		}
	}

	if button, ok := codeToXButton(0x116); !ok || button != 8 {
		t.Fatalf("codeToXButton(BTN_BACK)=%d,%v, want 8,true", button, ok)
	}
	if _, ok := xButtonToCode(4); ok {
		t.Fatalf("wheel button must not map to a code")
	}
}
