package sdlpad

import (
	"github.com/veandco/go-sdl2/sdl"

	"inputlogger/internal/core/inputlog"
)

// SDL reports triggers on 0..32767; evdev pads commonly use 0..255.
const triggerScale = 32767 / 255

var buttonCodes = map[sdl.GameControllerButton]uint16{
	sdl.CONTROLLER_BUTTON_A:             inputlog.CodeBtnSouth,
	sdl.CONTROLLER_BUTTON_B:             inputlog.CodeBtnEast,
	sdl.CONTROLLER_BUTTON_X:             inputlog.CodeBtnWest,
	sdl.CONTROLLER_BUTTON_Y:             inputlog.CodeBtnNorth,
	sdl.CONTROLLER_BUTTON_LEFTSHOULDER:  inputlog.CodeBtnTL,
	sdl.CONTROLLER_BUTTON_RIGHTSHOULDER: inputlog.CodeBtnTR,
	sdl.CONTROLLER_BUTTON_BACK:          0x13a,
	sdl.CONTROLLER_BUTTON_START:         0x13b,
	sdl.CONTROLLER_BUTTON_GUIDE:         0x13c,
	sdl.CONTROLLER_BUTTON_LEFTSTICK:     0x13d,
	sdl.CONTROLLER_BUTTON_RIGHTSTICK:    0x13e,
	sdl.CONTROLLER_BUTTON_DPAD_UP:       0x220,
	sdl.CONTROLLER_BUTTON_DPAD_DOWN:     0x221,
	sdl.CONTROLLER_BUTTON_DPAD_LEFT:     0x222,
	sdl.CONTROLLER_BUTTON_DPAD_RIGHT:    0x223,
}

var axisCodes = map[sdl.GameControllerAxis]uint16{
	sdl.CONTROLLER_AXIS_LEFTX:        inputlog.CodeAbsX,
	sdl.CONTROLLER_AXIS_LEFTY:        inputlog.CodeAbsY,
	sdl.CONTROLLER_AXIS_RIGHTX:       inputlog.CodeAbsRX,
	sdl.CONTROLLER_AXIS_RIGHTY:       inputlog.CodeAbsRY,
	sdl.CONTROLLER_AXIS_TRIGGERLEFT:  inputlog.CodeAbsZ,
	sdl.CONTROLLER_AXIS_TRIGGERRIGHT: inputlog.CodeAbsRZ,
}

// TranslateButton maps an SDL controller button to an evdev BTN_* event.
func TranslateButton(button uint8, pressed bool) (inputlog.Event, bool) {
	code, ok := buttonCodes[sdl.GameControllerButton(button)]
	if !ok {
		return inputlog.Event{}, false
	}
	var value int32
	if pressed {
		value = 1
	}
	return inputlog.Event{Type: inputlog.EventTypeKey, Code: code, Value: value}, true
}

// TranslateAxis maps an SDL controller axis to an evdev ABS_* event. Trigger
// values are rescaled to the 0..255 range the trigger threshold assumes.
func TranslateAxis(axis uint8, value int16) (inputlog.Event, bool) {
	sdlAxis := sdl.GameControllerAxis(axis)
	code, ok := axisCodes[sdlAxis]
	if !ok {
		return inputlog.Event{}, false
	}
	v := int32(value)
	if sdlAxis == sdl.CONTROLLER_AXIS_TRIGGERLEFT || sdlAxis == sdl.CONTROLLER_AXIS_TRIGGERRIGHT {
		v /= triggerScale
	}
	return inputlog.Event{Type: inputlog.EventTypeAbs, Code: code, Value: v}, true
}

// Translate converts controller events; everything else is dropped.
func Translate(event sdl.Event) (inputlog.Event, bool) {
	switch ev := event.(type) {
	case *sdl.ControllerButtonEvent:
		return TranslateButton(ev.Button, ev.State == sdl.PRESSED)
	case *sdl.ControllerAxisEvent:
		return TranslateAxis(ev.Axis, ev.Value)
	default:
		return inputlog.Event{}, false
	}
}
