//go:build linux

package linuxinput

import (
	"testing"

	"inputlogger/internal/core/inputlog"
)

type recordingSubmitter struct {
	keys []inputlog.Event
	pads []inputlog.Event
}

func (r *recordingSubmitter) SubmitKey(event inputlog.Event) {
	r.keys = append(r.keys, event)
}

func (r *recordingSubmitter) SubmitGamepad(event inputlog.Event) {
	r.pads = append(r.pads, event)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func TestRouteEvent(t *testing.T) {
	sub := &recordingSubmitter{}

	routeEvent(sub, RoleKeys, inputlog.Event{Type: inputlog.EventTypeKey, Code: inputlog.CodeKeySpace, Value: 1})
	routeEvent(sub, RoleKeys, inputlog.Event{Type: inputlog.EventTypeRel, Code: 0, Value: 4})
	routeEvent(sub, RoleKeys, inputlog.Event{Type: inputlog.EventTypeSyn})
	routeEvent(sub, RolePad, inputlog.Event{Type: inputlog.EventTypeKey, Code: inputlog.CodeBtnSouth, Value: 1})
	routeEvent(sub, RolePad, inputlog.Event{Type: inputlog.EventTypeAbs, Code: inputlog.CodeAbsX, Value: 20000})
	routeEvent(sub, RolePad, inputlog.Event{Type: inputlog.EventTypeSyn})
	routeEvent(sub, Role(0), inputlog.Event{Type: inputlog.EventTypeKey, Code: inputlog.CodeKeySpace, Value: 1})

	if len(sub.keys) != 1 || sub.keys[0].Code != inputlog.CodeKeySpace {
		t.Fatalf("keys routed = %+v, want one KEY_SPACE", sub.keys)
	}
	if len(sub.pads) != 2 || sub.pads[0].Code != inputlog.CodeBtnSouth || sub.pads[1].Type != inputlog.EventTypeAbs {
		t.Fatalf("pad events routed = %+v, want BTN_SOUTH then ABS_X", sub.pads)
	}
}

func TestNewRuntimeValidates(t *testing.T) {
	if _, err := NewRuntime(nil, &recordingSubmitter{}, noopLogger{}); err == nil {
		t.Fatalf("expected error for nil selection")
	}
	if _, err := NewRuntime(&SourceSelection{}, &recordingSubmitter{}, noopLogger{}); err == nil {
		t.Fatalf("expected error for empty selection")
	}
}

func TestRoleFor(t *testing.T) {
	opts := SelectOptions{Keys: true}
	if role, ok := roleFor(ClassPointer, opts); !ok || role != RoleKeys {
		t.Fatalf("roleFor(pointer)=%v,%v, want keys,true", role, ok)
	}
	if _, ok := roleFor(ClassGamepad, opts); ok {
		t.Fatalf("gamepad must not be selected without the gamepad option")
	}
	if role, ok := roleFor(ClassGamepad, SelectOptions{Gamepad: true}); !ok || role != RolePad {
		t.Fatalf("roleFor(gamepad)=%v,%v, want pad,true", role, ok)
	}
	if _, ok := roleFor(ClassOther, SelectOptions{Keys: true, Gamepad: true}); ok {
		t.Fatalf("other devices are never selected")
	}
}
