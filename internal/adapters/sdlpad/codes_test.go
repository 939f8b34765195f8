package sdlpad

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"inputlogger/internal/core/inputlog"
)

func TestTranslateButton(t *testing.T) {
	tests := []struct {
		button   sdl.GameControllerButton
		expected uint16
	}{
		{button: sdl.CONTROLLER_BUTTON_A, expected: inputlog.CodeBtnSouth},
		{button: sdl.CONTROLLER_BUTTON_B, expected: inputlog.CodeBtnEast},
		{button: sdl.CONTROLLER_BUTTON_X, expected: inputlog.CodeBtnWest},
		{button: sdl.CONTROLLER_BUTTON_Y, expected: inputlog.CodeBtnNorth},
		{button: sdl.CONTROLLER_BUTTON_RIGHTSHOULDER, expected: inputlog.CodeBtnTR},
	}
	for _, tc := range tests {
		ev, ok := TranslateButton(uint8(tc.button), true)
		if !ok || ev.Type != inputlog.EventTypeKey || ev.Code != tc.expected || ev.Value != 1 {
			t.Fatalf("TranslateButton(%d)=%+v,%v, want code %#x pressed", tc.button, ev, ok, tc.expected)
		}
	}

	if ev, ok := TranslateButton(uint8(sdl.CONTROLLER_BUTTON_A), false); !ok || ev.Value != 0 {
		t.Fatalf("release = %+v,%v, want value 0", ev, ok)
	}
	if _, ok := TranslateButton(200, true); ok {
		t.Fatalf("unknown button must not translate")
	}
}

func TestTranslateAxisMatchesThresholds(t *testing.T) {
	ev, ok := TranslateAxis(uint8(sdl.CONTROLLER_AXIS_LEFTX), 20000)
	if !ok || ev.Type != inputlog.EventTypeAbs || ev.Code != inputlog.CodeAbsX || ev.Value != 20000 {
		t.Fatalf("TranslateAxis(LEFTX)=%+v,%v", ev, ok)
	}

	ev, ok = TranslateAxis(uint8(sdl.CONTROLLER_AXIS_TRIGGERRIGHT), 32767)
	if !ok || ev.Code != inputlog.CodeAbsRZ || ev.Value < inputlog.TriggerThreshold || ev.Value > 255 {
		t.Fatalf("full trigger = %+v,%v, want ABS_RZ within 0..255 over threshold", ev, ok)
	}

	ev, _ = TranslateAxis(uint8(sdl.CONTROLLER_AXIS_TRIGGERLEFT), 8000)
	if ev.Value >= inputlog.TriggerThreshold {
		t.Fatalf("light trigger = %d, want below threshold", ev.Value)
	}
}

func TestTranslateFeedsHoldTracker(t *testing.T) {
	tracker := inputlog.NewHoldTracker(inputlog.DefaultControllerMap())

	for _, event := range []sdl.Event{
		&sdl.ControllerButtonEvent{Type: sdl.CONTROLLERBUTTONDOWN, Button: uint8(sdl.CONTROLLER_BUTTON_A), State: sdl.PRESSED},
		&sdl.ControllerAxisEvent{Type: sdl.CONTROLLERAXISMOTION, Axis: uint8(sdl.CONTROLLER_AXIS_LEFTY), Value: -30000},
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN},
	} {
		if translated, ok := Translate(event); ok {
			tracker.Apply(translated)
		}
	}

	state := tracker.Tick()
	if !state[inputlog.Jump] || !state[inputlog.Up] {
		t.Fatalf("state = %v, want jump and up", state.Active())
	}
}
