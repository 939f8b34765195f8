package sdlpad

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/veandco/go-sdl2/sdl"

	"inputlogger/internal/core/inputlog"
)

const pollTimeoutMs = 50

type Submitter interface {
	SubmitGamepad(event inputlog.Event)
}

// Source reads SDL game controllers on a dedicated OS thread. Controllers
// plugged in while running are opened as they appear.
type Source struct {
	submitter Submitter
	logger    inputlog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewSource(submitter Submitter, logger inputlog.Logger) (*Source, error) {
	if submitter == nil {
		return nil, fmt.Errorf("submitter is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Source{
		submitter: submitter,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

func (s *Source) Start() error {
	errCh := make(chan error, 1)
	go s.run(errCh)
	return <-errCh
}

func (s *Source) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}

func (s *Source) run(errCh chan<- error) {
	defer close(s.doneCh)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	sdl.SetHint(sdl.HINT_JOYSTICK_ALLOW_BACKGROUND_EVENTS, "1")
	if err := sdl.Init(sdl.INIT_GAMECONTROLLER); err != nil {
		errCh <- fmt.Errorf("init SDL game controllers: %w", err)
		return
	}
	defer sdl.Quit()

	pads := make(map[sdl.JoystickID]*sdl.GameController)
	defer func() {
		for _, pad := range pads {
			pad.Close()
		}
	}()
	for i := 0; i < sdl.NumJoysticks(); i++ {
		s.open(i, pads)
	}
	if len(pads) == 0 {
		s.logger.Warn("No game controllers connected; waiting for one")
	}
	errCh <- nil

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		event := sdl.WaitEventTimeout(pollTimeoutMs)
		if event == nil {
			continue
		}
		switch ev := event.(type) {
		case *sdl.ControllerDeviceEvent:
			switch ev.Type {
			case sdl.CONTROLLERDEVICEADDED:
				s.open(int(ev.Which), pads)
			case sdl.CONTROLLERDEVICEREMOVED:
				id := sdl.JoystickID(ev.Which)
				if pad, ok := pads[id]; ok {
					s.logger.Info("Game controller removed", "name", pad.Name())
					pad.Close()
					delete(pads, id)
				}
			}
		default:
			if translated, ok := Translate(event); ok {
				s.submitter.SubmitGamepad(translated)
			}
		}
	}
}

func (s *Source) open(index int, pads map[sdl.JoystickID]*sdl.GameController) {
	if !sdl.IsGameController(index) {
		return
	}
	pad := sdl.GameControllerOpen(index)
	if pad == nil {
		s.logger.Warn("Failed to open game controller", "index", index)
		return
	}
	id := pad.Joystick().InstanceID()
	if _, ok := pads[id]; ok {
		pad.Close()
		return
	}
	pads[id] = pad
	s.logger.Info("Opened game controller", "index", index, "name", pad.Name())
}

// ListControllers returns the names of connected game controllers.
func ListControllers() ([]string, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := sdl.Init(sdl.INIT_GAMECONTROLLER); err != nil {
		return nil, fmt.Errorf("init SDL game controllers: %w", err)
	}
	defer sdl.Quit()

	var names []string
	for i := 0; i < sdl.NumJoysticks(); i++ {
		if !sdl.IsGameController(i) {
			continue
		}
		names = append(names, sdl.GameControllerNameForIndex(i))
	}
	return names, nil
}
