package linuxinput

import (
	"fmt"
	"strconv"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

const (
	CodeBTNLeft  uint16 = uint16(evdev.BTN_LEFT)
	CodeBTNExtra uint16 = uint16(evdev.BTN_EXTRA)
)

var buttonDisplayNames = map[evdev.EvCode]string{
	evdev.BTN_LEFT:   "Mouse Left Button",
	evdev.BTN_RIGHT:  "Mouse Right Button",
	evdev.BTN_MIDDLE: "Mouse Middle Button",
	evdev.BTN_SIDE:   "Mouse Back Button",
	evdev.BTN_EXTRA:  "Mouse Forward Button",

	evdev.BTN_SOUTH:  "Gamepad South",
	evdev.BTN_EAST:   "Gamepad East",
	evdev.BTN_NORTH:  "Gamepad North",
	evdev.BTN_WEST:   "Gamepad West",
	evdev.BTN_TL:     "Gamepad Left Bumper",
	evdev.BTN_TR:     "Gamepad Right Bumper",
	evdev.BTN_SELECT: "Gamepad Select",
	evdev.BTN_START:  "Gamepad Start",
	evdev.BTN_MODE:   "Gamepad Home",
	evdev.BTN_THUMBL: "Gamepad Left Stick",
	evdev.BTN_THUMBR: "Gamepad Right Stick",
}

// ParseCode accepts KEY_*/BTN_* names (any case) or a numeric code.
func ParseCode(value string) (uint16, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, fmt.Errorf("binding code is empty")
	}
	if code, ok := evdev.KEYFromString[raw]; ok {
		return uint16(code), nil
	}
	if raw[0] >= 'A' && raw[0] <= 'Z' {
		if code, ok := evdev.KEYFromString["KEY_"+raw]; ok {
			return uint16(code), nil
		}
	}

	parsed, err := strconv.ParseInt(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown binding %q: use names like KEY_SPACE/BTN_LEFT or numeric code", value)
	}
	if parsed < 0 || parsed > 0xFFFF {
		return 0, fmt.Errorf("binding code out of range: %d", parsed)
	}
	return uint16(parsed), nil
}

// ParseAbsCode accepts ABS_* names or a numeric axis code.
func ParseAbsCode(value string) (uint16, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, fmt.Errorf("axis code is empty")
	}
	if code, ok := evdev.ABSFromString[raw]; ok {
		return uint16(code), nil
	}
	parsed, err := strconv.ParseUint(raw, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown axis %q: use names like ABS_X/ABS_RZ or numeric code", value)
	}
	return uint16(parsed), nil
}

func FormatCodeName(code uint16) string {
	name := evdev.CodeName(evdev.EV_KEY, evdev.EvCode(code))
	if name != "" {
		return name
	}
	return strconv.Itoa(int(code))
}

func FormatAbsName(code uint16) string {
	name := evdev.CodeName(evdev.EV_ABS, evdev.EvCode(code))
	if name != "" {
		return name
	}
	return strconv.Itoa(int(code))
}

// DisplayName renders a code for people: "Keyboard Space",
// "Mouse Left Button", "Gamepad South".
func DisplayName(code uint16) string {
	if name, ok := buttonDisplayNames[evdev.EvCode(code)]; ok {
		return name
	}
	name := FormatCodeName(code)
	switch {
	case strings.HasPrefix(name, "KEY_"):
		return "Keyboard " + titleToken(strings.TrimPrefix(name, "KEY_"))
	case strings.HasPrefix(name, "BTN_"):
		return "Button " + titleToken(strings.TrimPrefix(name, "BTN_"))
	default:
		return "Code " + name
	}
}

var compoundWords = map[string]string{
	"CAPSLOCK":   "Caps Lock",
	"NUMLOCK":    "Num Lock",
	"SCROLLLOCK": "Scroll Lock",
	"PAGEUP":     "Page Up",
	"PAGEDOWN":   "Page Down",
	"SYSRQ":      "Print Screen",
}

func titleToken(token string) string {
	words := make([]string, 0, 2)
	for _, part := range strings.Split(token, "_") {
		if part != "" {
			words = append(words, humanizeWord(part))
		}
	}
	if len(words) == 0 {
		return token
	}
	return strings.Join(words, " ")
}

func humanizeWord(token string) string {
	if word, ok := compoundWords[token]; ok {
		return word
	}
	for _, prefix := range []string{"LEFT", "RIGHT"} {
		if strings.HasPrefix(token, prefix) && len(token) > len(prefix) {
			return humanizeWord(prefix) + " " + humanizeWord(token[len(prefix):])
		}
	}
	if strings.HasPrefix(token, "KP") && len(token) > 2 {
		return "Keypad " + humanizeWord(token[2:])
	}
	if len(token) == 1 || token[0] == 'F' && len(token) <= 3 {
		return token
	}
	return token[:1] + strings.ToLower(token[1:])
}
