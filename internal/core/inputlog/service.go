package inputlog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	ModeKeyboard   = "keyboard"
	ModeController = "controller"

	maxPendingGamepadEvents = 1024
	recorderTimeout         = 2 * time.Second
)

type NoticeKind int

const (
	NoticeLogging NoticeKind = iota + 1
	NoticeMode
	NoticeRebindStarted
	NoticeRebindCancelled
	NoticeBinding
	NoticeError
)

// Notice describes a state transition. Notices are delivered synchronously
// from whichever goroutine caused the transition, never while the service
// lock is held.
type Notice struct {
	Kind           NoticeKind
	Logging        bool
	ControllerMode bool
	Input          Input
	Code           uint16
	Err            error
}

// SessionRecorder indexes sessions outside the output file.
type SessionRecorder interface {
	BeginSession(ctx context.Context, info SessionInfo, mode string, output string) (int64, error)
	EndSession(ctx context.Context, id int64, endedAt time.Time, lines int) error
}

type Config struct {
	Bindings       Bindings
	Controller     ControllerMap
	WriteInterval  time.Duration
	SampleInterval time.Duration
	HotkeyCode     uint16
	HotkeyInStream bool
	CancelCode     uint16
	RebindTimeout  time.Duration
	Latch          bool
	ControllerMode bool
	Output         string
	Notify         func(Notice)
	Recorder       SessionRecorder
	Now            func() time.Time
}

type Status struct {
	Logging        bool
	ControllerMode bool
	State          State
	Rebinding      Input
	Lines          int
	Session        SessionInfo
}

type Service struct {
	cfg    Config
	sink   Sink
	logger Logger
	now    func() time.Time

	bindings atomic.Pointer[Bindings]

	// recordMu serializes start/stop so the recorder runs outside mu.
	recordMu  sync.Mutex
	sessionID int64

	mu             sync.Mutex
	logging        bool
	controllerMode bool
	state          State
	latched        State
	hold           *HoldTracker
	pending        []Event
	rebindInput    Input
	rebindDeadline time.Time
	session        SessionInfo
	lines          int
	writeErr       string
	metadata       func() SessionInfo
}

func NewService(cfg Config, sink Sink, logger Logger) (*Service, error) {
	if sink == nil {
		return nil, fmt.Errorf("sink is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if cfg.WriteInterval <= 0 {
		cfg.WriteInterval = RateInterval(DefaultRate)
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = RateInterval(DefaultRate)
	}
	if cfg.CancelCode == 0 {
		cfg.CancelCode = CodeKeyEsc
	}
	if cfg.RebindTimeout <= 0 {
		cfg.RebindTimeout = DefaultRebindTimeout
	}
	if cfg.Controller.Buttons == nil && cfg.Controller.Triggers == nil && cfg.Controller.Sticks == nil {
		cfg.Controller = DefaultControllerMap()
	}
	if cfg.Bindings == (Bindings{}) {
		cfg.Bindings = DefaultBindings()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Service{
		cfg:            cfg,
		sink:           sink,
		logger:         logger,
		now:            now,
		controllerMode: cfg.ControllerMode,
		hold:           NewHoldTracker(cfg.Controller),
		pending:        make([]Event, 0, 64),
		rebindInput:    NoInput,
		sessionID:      -1,
	}
	bindings := cfg.Bindings
	s.bindings.Store(&bindings)
	return s, nil
}

// SetSessionSource sets the provider used for the session metadata when
// logging is started by the hotkey.
func (s *Service) SetSessionSource(fn func() SessionInfo) {
	s.mu.Lock()
	s.metadata = fn
	s.mu.Unlock()
}

// Run drives the gamepad sample loop and the file write loop until ctx is
// done. An active session is stopped before Run returns.
func (s *Service) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		runTicker(ctx, s.cfg.SampleInterval, s.sampleOnce)
	}()
	go func() {
		defer wg.Done()
		runTicker(ctx, s.cfg.WriteInterval, s.writeOnce)
	}()
	wg.Wait()
	s.StopLogging()
	return nil
}

func (s *Service) StartLogging(info SessionInfo) error {
	s.recordMu.Lock()
	s.mu.Lock()
	if s.logging {
		s.mu.Unlock()
		s.recordMu.Unlock()
		return nil
	}
	if info.StartedAt.IsZero() {
		info.StartedAt = s.now()
	}
	if err := s.sink.Append(FormatHeader(info)); err != nil {
		s.mu.Unlock()
		s.recordMu.Unlock()
		err = fmt.Errorf("write session header: %w", err)
		s.logger.Error("Failed to start logging", "err", err)
		s.emit(Notice{Kind: NoticeError, Err: err})
		return err
	}

	s.logging = true
	s.state = State{}
	s.latched = State{}
	s.hold.Reset()
	s.pending = s.pending[:0]
	s.session = info
	s.lines = 0
	s.writeErr = ""
	mode := s.modeLocked()
	s.mu.Unlock()

	s.beginRecord(info, mode)
	s.recordMu.Unlock()

	s.logger.Info("Logging started", "name", info.Name, "boss", info.Boss, "mode", mode)
	s.emit(Notice{Kind: NoticeLogging, Logging: true, ControllerMode: mode == ModeController})
	return nil
}

func (s *Service) StopLogging() {
	s.recordMu.Lock()
	s.mu.Lock()
	if !s.logging {
		s.mu.Unlock()
		s.recordMu.Unlock()
		return
	}
	s.logging = false
	lines := s.lines
	controller := s.controllerMode
	s.mu.Unlock()

	s.endRecord(lines)
	s.recordMu.Unlock()

	s.logger.Info("Logging stopped", "lines", lines)
	s.emit(Notice{Kind: NoticeLogging, Logging: false, ControllerMode: controller})
}

// ToggleLogging performs the same transitions as StartLogging and
// StopLogging, taking session metadata from the session source.
func (s *Service) ToggleLogging() error {
	if s.IsLogging() {
		s.StopLogging()
		return nil
	}
	return s.StartLogging(s.currentMetadata())
}

func (s *Service) IsLogging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logging
}

func (s *Service) ControllerMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controllerMode
}

// SetControllerMode switches the active input path. The switch clears the
// shared state under the same lock both paths write through, so no write
// from the previous path survives it.
func (s *Service) SetControllerMode(enabled bool) {
	s.mu.Lock()
	if s.controllerMode == enabled {
		s.mu.Unlock()
		return
	}
	s.controllerMode = enabled
	s.state = State{}
	s.latched = State{}
	s.hold.Reset()
	s.pending = s.pending[:0]
	logging := s.logging
	s.mu.Unlock()

	if enabled {
		s.logger.Info("Controller mode")
	} else {
		s.logger.Info("Keyboard/mouse mode")
	}
	s.emit(Notice{Kind: NoticeMode, Logging: logging, ControllerMode: enabled})
}

func (s *Service) ToggleControllerMode() bool {
	enabled := !s.ControllerMode()
	s.SetControllerMode(enabled)
	return enabled
}

func (s *Service) Bindings() Bindings {
	return *s.bindings.Load()
}

// BeginRebind captures the next key or button press as the binding for
// input. Until then, keyboard/mouse events are not sampled.
func (s *Service) BeginRebind(input Input) error {
	if !input.Valid() {
		return fmt.Errorf("invalid input index %d", int(input))
	}
	s.mu.Lock()
	s.rebindInput = input
	s.rebindDeadline = s.now().Add(s.cfg.RebindTimeout)
	s.mu.Unlock()

	s.logger.Info("Waiting for binding", "input", input.String())
	s.emit(Notice{Kind: NoticeRebindStarted, Input: input})
	return nil
}

// CancelRebind abandons a pending rebind. It is a no-op when none is
// pending.
func (s *Service) CancelRebind() {
	s.mu.Lock()
	input := s.rebindInput
	s.rebindInput = NoInput
	s.mu.Unlock()

	if input.Valid() {
		s.logger.Info("Binding cancelled", "input", input.String())
		s.emit(Notice{Kind: NoticeRebindCancelled, Input: input})
	}
}

// SubmitKey handles a key or mouse-button event from the keyboard/mouse
// path. Presses are value 1, releases 0 and autorepeat 2.
func (s *Service) SubmitKey(event Event) {
	if event.Type != EventTypeKey {
		return
	}

	s.mu.Lock()
	if s.rebindInput.Valid() {
		if s.now().After(s.rebindDeadline) {
			input := s.rebindInput
			s.rebindInput = NoInput
			s.mu.Unlock()
			s.emit(Notice{Kind: NoticeRebindCancelled, Input: input})
			s.mu.Lock()
		} else {
			s.captureBindingLocked(event)
			return
		}
	}

	if s.cfg.HotkeyInStream && s.cfg.HotkeyCode != 0 && event.Code == s.cfg.HotkeyCode {
		s.mu.Unlock()
		if event.Value == 1 {
			s.Hotkey()
		}
		return
	}

	if event.Value == 2 || !s.logging || s.controllerMode {
		s.mu.Unlock()
		return
	}
	if input, ok := s.bindings.Load().Lookup(event.Code); ok {
		held := event.Value == 1
		s.state[input] = held
		if held && s.cfg.Latch {
			s.latched[input] = true
		}
	}
	s.mu.Unlock()
}

// releaseLocked applies a release seen while a rebind is pending, so an
// input held when the capture began does not stay set.
func (s *Service) releaseLocked(event Event) {
	if event.Value != 0 || !s.logging || s.controllerMode {
		return
	}
	if input, ok := s.bindings.Load().Lookup(event.Code); ok {
		s.state[input] = false
	}
}

// SubmitGamepad queues a raw gamepad event for the next sample tick.
func (s *Service) SubmitGamepad(event Event) {
	if event.Type == EventTypeSyn {
		return
	}
	s.mu.Lock()
	if len(s.pending) >= maxPendingGamepadEvents {
		copy(s.pending, s.pending[1:])
		s.pending = s.pending[:len(s.pending)-1]
	}
	s.pending = append(s.pending, event)
	s.mu.Unlock()
}

// Hotkey toggles logging; it is the entry point for hotkeys delivered
// outside the event stream.
func (s *Service) Hotkey() {
	s.logger.Info("Hotkey pressed, toggling logging")
	if err := s.ToggleLogging(); err != nil {
		s.logger.Warn("Hotkey toggle failed", "err", err)
	}
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Logging:        s.logging,
		ControllerMode: s.controllerMode,
		State:          s.state,
		Rebinding:      s.rebindInput,
		Lines:          s.lines,
		Session:        s.session,
	}
}

func (s *Service) captureBindingLocked(event Event) {
	if event.Value != 1 {
		s.releaseLocked(event)
		s.mu.Unlock()
		return
	}

	input := s.rebindInput
	s.rebindInput = NoInput
	if event.Code == s.cfg.CancelCode {
		s.mu.Unlock()
		s.logger.Info("Binding cancelled", "input", input.String())
		s.emit(Notice{Kind: NoticeRebindCancelled, Input: input})
		return
	}

	next, err := s.bindings.Load().With(input, event.Code)
	if err != nil {
		s.mu.Unlock()
		s.emit(Notice{Kind: NoticeError, Err: err})
		return
	}
	s.bindings.Store(&next)
	s.mu.Unlock()

	s.logger.Info("Binding set", "input", input.String(), "code", event.Code)
	s.emit(Notice{Kind: NoticeBinding, Input: input, Code: event.Code})
}

func (s *Service) sampleOnce() {
	s.expireRebind()

	s.mu.Lock()
	if s.logging && s.controllerMode {
		for _, event := range s.pending {
			s.hold.Apply(event)
		}
		s.state = s.hold.Tick()
	}
	s.pending = s.pending[:0]
	s.mu.Unlock()
}

func (s *Service) writeOnce() {
	s.mu.Lock()
	if !s.logging {
		s.mu.Unlock()
		return
	}

	state := s.state
	if s.cfg.Latch {
		state = state.Or(s.latched)
		s.latched = State{}
	}

	var notice *Notice
	err := s.sink.Append(FormatLine(state))
	if err != nil {
		if msg := err.Error(); msg != s.writeErr {
			s.writeErr = msg
			notice = &Notice{Kind: NoticeError, Err: fmt.Errorf("write state line: %w", err)}
		}
	} else {
		s.lines++
		if s.writeErr != "" {
			s.writeErr = ""
			notice = &Notice{Kind: NoticeError}
		}
	}
	s.mu.Unlock()

	if notice != nil {
		if notice.Err != nil {
			s.logger.Warn("Write failed", "err", notice.Err)
		} else {
			s.logger.Info("Write recovered")
		}
		s.emit(*notice)
	}
}

func (s *Service) expireRebind() {
	s.mu.Lock()
	if !s.rebindInput.Valid() || !s.now().After(s.rebindDeadline) {
		s.mu.Unlock()
		return
	}
	input := s.rebindInput
	s.rebindInput = NoInput
	s.mu.Unlock()

	s.logger.Info("Binding capture timed out", "input", input.String())
	s.emit(Notice{Kind: NoticeRebindCancelled, Input: input})
}

func (s *Service) currentMetadata() SessionInfo {
	s.mu.Lock()
	fn := s.metadata
	s.mu.Unlock()
	if fn == nil {
		return SessionInfo{}
	}
	return fn()
}

func (s *Service) modeLocked() string {
	if s.controllerMode {
		return ModeController
	}
	return ModeKeyboard
}

// beginRecord and endRecord run with recordMu held and mu released.
func (s *Service) beginRecord(info SessionInfo, mode string) {
	s.sessionID = -1
	if s.cfg.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()
	id, err := s.cfg.Recorder.BeginSession(ctx, info, mode, s.cfg.Output)
	if err != nil {
		s.logger.Warn("Failed to index session", "err", err)
		return
	}
	s.sessionID = id
}

func (s *Service) endRecord(lines int) {
	if s.cfg.Recorder == nil || s.sessionID < 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()
	if err := s.cfg.Recorder.EndSession(ctx, s.sessionID, s.now(), lines); err != nil {
		s.logger.Warn("Failed to finish indexed session", "err", err)
	}
	s.sessionID = -1
}

func (s *Service) emit(notice Notice) {
	if s.cfg.Notify != nil {
		s.cfg.Notify(notice)
	}
}

func runTicker(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
