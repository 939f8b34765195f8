//go:build linux

package x11input

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"inputlogger/internal/adapters/linuxinput"
	"inputlogger/internal/core/inputlog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Available reports whether an X11 display is configured.
func Available() bool {
	return os.Getenv("DISPLAY") != ""
}

type codeBinding struct {
	code     uint16
	keycodes []xproto.Keycode
	buttons  []xproto.Button
}

// Hotkey holds a passive grab of one key or button on the root window and
// calls onPress for every physical press, skipping autorepeat.
type Hotkey struct {
	xu      *xgbutil.XUtil
	conn    *xgb.Conn
	rootWin xproto.Window

	onPress func()
	logger  inputlog.Logger

	mu             sync.Mutex
	binding        codeBinding
	grabbedKeys    []xproto.Keycode
	grabbedButtons []xproto.Button
	lastRelease    xproto.Timestamp
	started        bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewHotkey(code uint16, onPress func(), logger inputlog.Logger) (*Hotkey, error) {
	if onPress == nil {
		return nil, fmt.Errorf("hotkey handler is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	conn := xu.Conn()
	if conn == nil {
		return nil, fmt.Errorf("failed to open X11 connection")
	}
	keybind.Initialize(xu)

	h := &Hotkey{
		xu:      xu,
		conn:    conn,
		rootWin: xu.RootWin(),
		onPress: onPress,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	if err := h.SetCode(code); err != nil {
		conn.Close()
		return nil, err
	}
	return h, nil
}

func (h *Hotkey) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return nil
	}
	h.started = true
	go h.eventLoop()
	return nil
}

func (h *Hotkey) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)

		h.mu.Lock()
		h.ungrabAllLocked()
		h.conn.Close()
		started := h.started
		h.mu.Unlock()

		if started {
			<-h.doneCh
		}
	})
}

// SetCode moves the grab to another key or mouse button.
func (h *Hotkey) SetCode(code uint16) error {
	binding, err := h.resolveBinding(code)
	if err != nil {
		return fmt.Errorf("hotkey binding: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.ungrabAllLocked()
	if err := h.grabAllLocked(binding); err != nil {
		h.ungrabAllLocked()
		return err
	}
	h.binding = binding
	h.logger.Info("Hotkey registered", "code", linuxinput.FormatCodeName(code))
	return nil
}

func (h *Hotkey) eventLoop() {
	defer close(h.doneCh)

	for {
		event, xerr := h.conn.WaitForEvent()
		if xerr != nil {
			select {
			case <-h.stopCh:
				return
			default:
			}
			h.logger.Warn("X11 event error", "err", xerr)
			continue
		}
		if event == nil {
			return
		}

		switch ev := event.(type) {
		case xproto.KeyPressEvent:
			if h.isAutoRepeat(ev.Time) {
				continue
			}
			h.onPress()
		case xproto.KeyReleaseEvent:
			h.mu.Lock()
			h.lastRelease = ev.Time
			h.mu.Unlock()
		case xproto.ButtonPressEvent:
			h.onPress()
		}
	}
}

// isAutoRepeat detects the release/press pair X11 sends for a held key:
// both carry the same server timestamp.
func (h *Hotkey) isAutoRepeat(pressed xproto.Timestamp) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastRelease != 0 && h.lastRelease == pressed
}

func (h *Hotkey) grabAllLocked(binding codeBinding) error {
	for _, key := range binding.keycodes {
		if err := xproto.GrabKeyChecked(
			h.conn,
			false,
			h.rootWin,
			xproto.ModMaskAny,
			key,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Check(); err != nil {
			return err
		}
		h.grabbedKeys = append(h.grabbedKeys, key)
	}

	for _, button := range binding.buttons {
		if err := xproto.GrabButtonChecked(
			h.conn,
			false,
			h.rootWin,
			xproto.EventMaskButtonPress,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
			xproto.WindowNone,
			xproto.CursorNone,
			byte(button),
			xproto.ModMaskAny,
		).Check(); err != nil {
			return err
		}
		h.grabbedButtons = append(h.grabbedButtons, button)
	}
	return nil
}

func (h *Hotkey) ungrabAllLocked() {
	for _, key := range h.grabbedKeys {
		xproto.UngrabKey(h.conn, key, h.rootWin, xproto.ModMaskAny)
	}
	for _, button := range h.grabbedButtons {
		xproto.UngrabButton(h.conn, byte(button), h.rootWin, xproto.ModMaskAny)
	}
	h.grabbedKeys = nil
	h.grabbedButtons = nil
}

func (h *Hotkey) resolveBinding(code uint16) (codeBinding, error) {
	if button, ok := codeToXButton(code); ok {
		return codeBinding{code: code, buttons: []xproto.Button{xproto.Button(button)}}, nil
	}

	keyName, ok := linuxCodeToXKeyString(code)
	if !ok {
		return codeBinding{}, fmt.Errorf("unsupported X11 key code %s", linuxinput.FormatCodeName(code))
	}

	keycodes := keybind.StrToKeycodes(h.xu, keyName)
	if len(keycodes) == 0 {
		return codeBinding{}, fmt.Errorf("failed to resolve X11 key %q", keyName)
	}

	uniq := make(map[xproto.Keycode]struct{}, len(keycodes))
	for _, keycode := range keycodes {
		uniq[keycode] = struct{}{}
	}
	result := make([]xproto.Keycode, 0, len(uniq))
	for key := range uniq {
		result = append(result, key)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return codeBinding{code: code, keycodes: result}, nil
}

// CaptureNextKeyCode grabs keyboard and pointer until a key or button is
// pressed or ctx is done.
func CaptureNextKeyCode(ctx context.Context) (uint16, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return 0, err
	}
	conn := xu.Conn()
	root := xu.RootWin()
	keybind.Initialize(xu)

	defer conn.Close()
	defer xproto.UngrabPointer(conn, xproto.TimeCurrentTime)
	defer xproto.UngrabKeyboard(conn, xproto.TimeCurrentTime)

	if reply, err := xproto.GrabKeyboard(
		conn,
		false,
		root,
		xproto.TimeCurrentTime,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
	).Reply(); err != nil {
		return 0, err
	} else if reply.Status != xproto.GrabStatusSuccess {
		return 0, fmt.Errorf("failed to grab keyboard (status=%d)", reply.Status)
	}

	if reply, err := xproto.GrabPointer(
		conn,
		false,
		root,
		xproto.EventMaskButtonPress,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		xproto.CursorNone,
		xproto.TimeCurrentTime,
	).Reply(); err != nil {
		return 0, err
	} else if reply.Status != xproto.GrabStatusSuccess {
		return 0, fmt.Errorf("failed to grab pointer (status=%d)", reply.Status)
	}

	for {
		event, xerr := conn.PollForEvent()
		if xerr != nil {
			return 0, xerr
		}
		if event == nil {
			select {
			case <-ctx.Done():
				return 0, fmt.Errorf("waiting for key/button input: %w", ctx.Err())
			case <-time.After(2 * time.Millisecond):
			}
			continue
		}

		switch ev := event.(type) {
		case xproto.ButtonPressEvent:
			if code, ok := xButtonToCode(byte(ev.Detail)); ok {
				return code, nil
			}
		case xproto.KeyPressEvent:
			lookup := keybind.LookupString(xu, ev.State, ev.Detail)
			if code, ok := xLookupStringToLinuxCode(lookup); ok {
				return code, nil
			}
		}
	}
}
