//go:build linux

package linuxinput

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"inputlogger/internal/core/inputlog"

	evdev "github.com/holoplot/go-evdev"
)

// Submitter receives translated events. *inputlog.Service implements it.
type Submitter interface {
	SubmitKey(event inputlog.Event)
	SubmitGamepad(event inputlog.Event)
}

type Runtime struct {
	devices   []*evdev.InputDevice
	roles     map[string]Role
	submitter Submitter
	logger    inputlog.Logger

	stopCh    chan struct{}
	stopOnce  sync.Once
	readersWG sync.WaitGroup
}

func NewRuntime(selection *SourceSelection, submitter Submitter, logger inputlog.Logger) (*Runtime, error) {
	if selection == nil {
		return nil, fmt.Errorf("source selection is nil")
	}
	if len(selection.Devices) == 0 {
		return nil, fmt.Errorf("source selection has no devices")
	}
	if submitter == nil {
		return nil, fmt.Errorf("submitter is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	return &Runtime{
		devices:   selection.Devices,
		roles:     selection.Roles,
		submitter: submitter,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}, nil
}

func (r *Runtime) Start() error {
	for _, dev := range r.devices {
		if err := dev.NonBlock(); err != nil {
			return fmt.Errorf("failed to set nonblocking mode for %s: %w", dev.Path(), err)
		}
	}

	for _, dev := range r.devices {
		role := r.roles[dev.Path()]
		name, _ := dev.Name()
		r.logger.Info("Reading input device", "path", dev.Path(), "name", name, "role", roleName(role))
		r.readersWG.Add(1)
		go r.readLoop(dev, role)
	}
	return nil
}

func (r *Runtime) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		closeInputDevices(r.devices)
		r.readersWG.Wait()
	})
}

func (r *Runtime) readLoop(dev *evdev.InputDevice, role Role) {
	defer r.readersWG.Done()

	path := dev.Path()
	for {
		events, err := dev.ReadSlice(64)
		if err != nil {
			if r.stopped() || isDeviceClosedError(err) {
				return
			}
			if isWouldBlockError(err) {
				if !r.sleepWithStop(5 * time.Millisecond) {
					return
				}
				continue
			}
			r.logger.Warn("Read failed", "path", path, "err", err)
			if !r.sleepWithStop(100 * time.Millisecond) {
				return
			}
			continue
		}

		for _, event := range events {
			routeEvent(r.submitter, role, inputlog.Event{
				Type:  uint16(event.Type),
				Code:  uint16(event.Code),
				Value: event.Value,
			})
		}
	}
}

// routeEvent sends key/button events from keyboards and mice to the
// keyboard path, and buttons plus axes from gamepads to the gamepad path.
func routeEvent(submitter Submitter, role Role, event inputlog.Event) {
	switch role {
	case RoleKeys:
		if event.Type == inputlog.EventTypeKey {
			submitter.SubmitKey(event)
		}
	case RolePad:
		if event.Type == inputlog.EventTypeKey || event.Type == inputlog.EventTypeAbs {
			submitter.SubmitGamepad(event)
		}
	}
}

func roleName(role Role) string {
	switch role {
	case RoleKeys:
		return "keyboard/mouse"
	case RolePad:
		return "gamepad"
	default:
		return "unknown"
	}
}

func (r *Runtime) stopped() bool {
	select {
	case <-r.stopCh:
		return true
	default:
		return false
	}
}

func (r *Runtime) sleepWithStop(duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-r.stopCh:
		return false
	case <-timer.C:
		return true
	}
}

func isDeviceClosedError(err error) bool {
	return errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENODEV)
}

func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
