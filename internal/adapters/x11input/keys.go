package x11input

import (
	"strings"

	"inputlogger/internal/adapters/linuxinput"
)

// keysymNames maps evdev key names (without the KEY_ prefix) to X11 keysym
// names where the two differ in more than case.
var keysymNames = map[string]string{
	"ESC":        "Escape",
	"ENTER":      "Return",
	"TAB":        "Tab",
	"SPACE":      "space",
	"BACKSPACE":  "BackSpace",
	"LEFTSHIFT":  "Shift_L",
	"RIGHTSHIFT": "Shift_R",
	"LEFTCTRL":   "Control_L",
	"RIGHTCTRL":  "Control_R",
	"LEFTALT":    "Alt_L",
	"RIGHTALT":   "Alt_R",
	"LEFTMETA":   "Super_L",
	"RIGHTMETA":  "Super_R",
	"CAPSLOCK":   "Caps_Lock",
	"NUMLOCK":    "Num_Lock",
	"SCROLLLOCK": "Scroll_Lock",
	"PAGEUP":     "Page_Up",
	"PAGEDOWN":   "Page_Down",
	"INSERT":     "Insert",
	"DELETE":     "Delete",
	"HOME":       "Home",
	"END":        "End",
	"UP":         "Up",
	"DOWN":       "Down",
	"LEFT":       "Left",
	"RIGHT":      "Right",
	"MENU":       "Menu",
	"PAUSE":      "Pause",
	"MINUS":      "minus",
	"EQUAL":      "equal",
	"LEFTBRACE":  "bracketleft",
	"RIGHTBRACE": "bracketright",
	"SEMICOLON":  "semicolon",
	"APOSTROPHE": "apostrophe",
	"GRAVE":      "grave",
	"BACKSLASH":  "backslash",
	"COMMA":      "comma",
	"DOT":        "period",
	"SLASH":      "slash",
	"KPPLUS":     "KP_Add",
	"KPMINUS":    "KP_Subtract",
	"KPASTERISK": "KP_Multiply",
	"KPSLASH":    "KP_Divide",
	"KPDOT":      "KP_Decimal",
	"KPENTER":    "KP_Enter",
}

var evdevTokens = func() map[string]string {
	out := make(map[string]string, len(keysymNames))
	for token, keysym := range keysymNames {
		out[strings.ToLower(keysym)] = token
	}
	return out
}()

// Pointer buttons by X11 button index.
var xButtons = map[byte]string{
	1: "BTN_LEFT",
	2: "BTN_MIDDLE",
	3: "BTN_RIGHT",
	8: "BTN_SIDE",
	9: "BTN_EXTRA",
}

var xButtonAliases = map[string]byte{
	"BTN_BACK":    8,
	"BTN_FORWARD": 9,
}

func linuxCodeToXKeyString(code uint16) (string, bool) {
	name := linuxinput.FormatCodeName(code)
	if !strings.HasPrefix(name, "KEY_") {
		return "", false
	}
	token := strings.TrimPrefix(name, "KEY_")
	if keysym, ok := keysymNames[token]; ok {
		return keysym, true
	}

	switch {
	case len(token) == 1 && token[0] >= 'A' && token[0] <= 'Z':
		return strings.ToLower(token), true
	case len(token) == 1 && token[0] >= '0' && token[0] <= '9':
		return token, true
	case strings.HasPrefix(token, "F") && isDigits(token[1:]):
		return token, true
	case strings.HasPrefix(token, "KP") && len(token) == 3 && isDigits(token[2:]):
		return "KP_" + token[2:], true
	}
	return "", false
}

func xLookupStringToLinuxCode(value string) (uint16, bool) {
	raw := strings.ToLower(strings.TrimSpace(value))
	if raw == "" {
		return 0, false
	}

	var token string
	switch {
	case evdevTokens[raw] != "":
		token = evdevTokens[raw]
	case len(raw) == 1 && (raw[0] >= 'a' && raw[0] <= 'z' || raw[0] >= '0' && raw[0] <= '9'):
		token = strings.ToUpper(raw)
	case strings.HasPrefix(raw, "f") && isDigits(raw[1:]):
		token = strings.ToUpper(raw)
	case strings.HasPrefix(raw, "kp_") && len(raw) == 4 && isDigits(raw[3:]):
		token = "KP" + raw[3:]
	default:
		return 0, false
	}
	return parseLinuxCode("KEY_" + token)
}

func codeToXButton(code uint16) (byte, bool) {
	for button, name := range xButtons {
		if c, ok := parseLinuxCode(name); ok && c == code {
			return button, true
		}
	}
	for name, button := range xButtonAliases {
		if c, ok := parseLinuxCode(name); ok && c == code {
			return button, true
		}
	}
	return 0, false
}

func xButtonToCode(button byte) (uint16, bool) {
	name, ok := xButtons[button]
	if !ok {
		return 0, false
	}
	return parseLinuxCode(name)
}

func parseLinuxCode(name string) (uint16, bool) {
	code, err := linuxinput.ParseCode(name)
	if err != nil {
		return 0, false
	}
	return code, true
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
