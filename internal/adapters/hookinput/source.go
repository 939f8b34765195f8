package hookinput

import (
	"fmt"
	"sync"

	hook "github.com/robotn/gohook"

	"inputlogger/internal/core/inputlog"
)

type Submitter interface {
	SubmitKey(event inputlog.Event)
}

// Source reads global keyboard and mouse events through a system hook.
// Only one Source may run per process.
type Source struct {
	submitter Submitter
	logger    inputlog.Logger

	mu   sync.Mutex
	held map[uint16]bool

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
		held:      make(map[uint16]bool),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

func (s *Source) Start() error {
	events := hook.Start()
	s.logger.Info("Keyboard/mouse hook started")
	go s.loop(events)
	return nil
}

func (s *Source) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		hook.End()
		<-s.doneCh
	})
}

func (s *Source) loop(events chan hook.Event) {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handle(ev)
		}
	}
}

// handle reports repeated presses of a held key as autorepeat (value 2),
// matching what evdev delivers.
func (s *Source) handle(ev hook.Event) {
	event, ok := Translate(ev)
	if !ok {
		return
	}

	s.mu.Lock()
	if event.Value == 1 && s.held[event.Code] {
		event.Value = 2
	}
	if event.Value == 0 {
		delete(s.held, event.Code)
	} else {
		s.held[event.Code] = true
	}
	s.mu.Unlock()

	s.submitter.SubmitKey(event)
}
