package inputlog

const (
	HoldTicks        = 2
	TriggerThreshold = 125
	StickThreshold   = 10000
)

// StickMapping splits one stick axis into two digital directions.
type StickMapping struct {
	Negative Input
	Positive Input
}

// ControllerMap routes raw gamepad codes to inputs. Buttons are EV_KEY codes,
// triggers and sticks are EV_ABS codes.
type ControllerMap struct {
	Buttons  map[uint16]Input
	Triggers map[uint16]Input
	Sticks   map[uint16]StickMapping
}

func DefaultControllerMap() ControllerMap {
	return ControllerMap{
		Buttons: map[uint16]Input{
			CodeBtnNorth: DreamNail,
			CodeBtnSouth: Jump,
			CodeBtnWest:  Attack,
			CodeBtnEast:  Focus,
			CodeBtnTR:    Cast,
		},
		Triggers: map[uint16]Input{
			CodeAbsZ:  SuperDash,
			CodeAbsRZ: Dash,
		},
		Sticks: map[uint16]StickMapping{
			CodeAbsX: {Negative: Left, Positive: Right},
			CodeAbsY: {Negative: Up, Positive: Down},
		},
	}
}

func (m ControllerMap) clone() ControllerMap {
	out := ControllerMap{
		Buttons:  make(map[uint16]Input, len(m.Buttons)),
		Triggers: make(map[uint16]Input, len(m.Triggers)),
		Sticks:   make(map[uint16]StickMapping, len(m.Sticks)),
	}
	for code, input := range m.Buttons {
		out.Buttons[code] = input
	}
	for code, input := range m.Triggers {
		out.Triggers[code] = input
	}
	for code, stick := range m.Sticks {
		out.Sticks[code] = stick
	}
	return out
}

// HoldTracker turns instantaneous gamepad presses into a flag that stays
// active for HoldTicks sample ticks. It is not safe for concurrent use.
type HoldTracker struct {
	mapping  ControllerMap
	counters [NumInputs]int
}

func NewHoldTracker(mapping ControllerMap) *HoldTracker {
	return &HoldTracker{mapping: mapping.clone()}
}

func (h *HoldTracker) Apply(event Event) {
	if event.Type == EventTypeSyn || event.Value == 0 {
		return
	}

	switch event.Type {
	case EventTypeKey:
		if input, ok := h.mapping.Buttons[event.Code]; ok && event.Value == 1 {
			h.hold(input)
		}
	case EventTypeAbs:
		if input, ok := h.mapping.Triggers[event.Code]; ok {
			if event.Value >= TriggerThreshold {
				h.hold(input)
			}
			return
		}
		if stick, ok := h.mapping.Sticks[event.Code]; ok {
			if event.Value >= StickThreshold {
				h.hold(stick.Positive)
			}
			if event.Value <= -StickThreshold {
				h.hold(stick.Negative)
			}
		}
	}
}

// Tick reports every input whose counter is positive as active, then
// decrements those counters. A press applied before a tick is therefore
// reported by exactly HoldTicks consecutive ticks.
func (h *HoldTracker) Tick() State {
	var state State
	for i := range h.counters {
		if h.counters[i] > 0 {
			state[i] = true
			h.counters[i]--
		}
	}
	return state
}

func (h *HoldTracker) Reset() {
	h.counters = [NumInputs]int{}
}

func (h *HoldTracker) Counters() [NumInputs]int {
	return h.counters
}

func (h *HoldTracker) hold(input Input) {
	if input.Valid() {
		h.counters[input] = HoldTicks
	}
}
