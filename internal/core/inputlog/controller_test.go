package inputlog

import (
	"math/rand"
	"testing"
)

func TestHoldTrackerPressVisibleForExactlyTwoTicks(t *testing.T) {
	tracker := NewHoldTracker(DefaultControllerMap())
	tracker.Apply(Event{Type: EventTypeKey, Code: CodeBtnSouth, Value: 1})

	if got := tracker.Counters()[Jump]; got != HoldTicks {
		t.Fatalf("counter after press = %d, want %d", got, HoldTicks)
	}

	first := tracker.Tick()
	if !first[Jump] {
		t.Fatalf("expected jump active on the triggering tick")
	}
	if got := tracker.Counters()[Jump]; got != 1 {
		t.Fatalf("counter after first tick = %d, want 1", got)
	}

	second := tracker.Tick()
	if !second[Jump] {
		t.Fatalf("expected jump active on the second tick")
	}
	if got := tracker.Counters()[Jump]; got != 0 {
		t.Fatalf("counter after second tick = %d, want 0", got)
	}

	third := tracker.Tick()
	if third[Jump] {
		t.Fatalf("expected jump inactive on the third tick")
	}
}

func TestHoldTrackerIgnoresSyncZeroAndRelease(t *testing.T) {
	tracker := NewHoldTracker(DefaultControllerMap())
	tracker.Apply(Event{Type: EventTypeSyn, Code: SynReportCode, Value: 1})
	tracker.Apply(Event{Type: EventTypeKey, Code: CodeBtnSouth, Value: 0})
	tracker.Apply(Event{Type: EventTypeAbs, Code: CodeAbsX, Value: 0})
	tracker.Apply(Event{Type: EventTypeKey, Code: 0x2ff, Value: 1})

	if state := tracker.Tick(); len(state.Active()) != 0 {
		t.Fatalf("expected no active inputs, got %v", state.Active())
	}
}

func TestHoldTrackerThresholds(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  Input
	}{
		{"trigger below", Event{Type: EventTypeAbs, Code: CodeAbsZ, Value: TriggerThreshold - 1}, NoInput},
		{"trigger at", Event{Type: EventTypeAbs, Code: CodeAbsZ, Value: TriggerThreshold}, SuperDash},
		{"right trigger", Event{Type: EventTypeAbs, Code: CodeAbsRZ, Value: 255}, Dash},
		{"stick right below", Event{Type: EventTypeAbs, Code: CodeAbsX, Value: StickThreshold - 1}, NoInput},
		{"stick right at", Event{Type: EventTypeAbs, Code: CodeAbsX, Value: StickThreshold}, Right},
		{"stick left at", Event{Type: EventTypeAbs, Code: CodeAbsX, Value: -StickThreshold}, Left},
		{"stick left below", Event{Type: EventTypeAbs, Code: CodeAbsX, Value: -StickThreshold + 1}, NoInput},
		{"stick down", Event{Type: EventTypeAbs, Code: CodeAbsY, Value: 32767}, Down},
		{"stick up", Event{Type: EventTypeAbs, Code: CodeAbsY, Value: -32768}, Up},
		{"north", Event{Type: EventTypeKey, Code: CodeBtnNorth, Value: 1}, DreamNail},
		{"west", Event{Type: EventTypeKey, Code: CodeBtnWest, Value: 1}, Attack},
		{"east", Event{Type: EventTypeKey, Code: CodeBtnEast, Value: 1}, Focus},
		{"shoulder", Event{Type: EventTypeKey, Code: CodeBtnTR, Value: 1}, Cast},
		{"button autorepeat", Event{Type: EventTypeKey, Code: CodeBtnSouth, Value: 2}, NoInput},
	}

	for _, tc := range tests {
		tracker := NewHoldTracker(DefaultControllerMap())
		tracker.Apply(tc.event)
		active := tracker.Tick().Active()
		if tc.want == NoInput {
			if len(active) != 0 {
				t.Fatalf("%s: expected no active inputs, got %v", tc.name, active)
			}
			continue
		}
		if len(active) != 1 || active[0] != tc.want {
			t.Fatalf("%s: active = %v, want [%v]", tc.name, active, tc.want)
		}
	}
}

func TestHoldTrackerRepressRestartsHold(t *testing.T) {
	tracker := NewHoldTracker(DefaultControllerMap())
	tracker.Apply(Event{Type: EventTypeKey, Code: CodeBtnSouth, Value: 1})
	tracker.Tick()
	tracker.Apply(Event{Type: EventTypeKey, Code: CodeBtnSouth, Value: 1})

	for i := 0; i < HoldTicks; i++ {
		if !tracker.Tick()[Jump] {
			t.Fatalf("expected jump active on tick %d after re-press", i)
		}
	}
	if tracker.Tick()[Jump] {
		t.Fatalf("expected jump released after hold expired")
	}
}

func TestHoldTrackerCountersStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	codes := []Event{
		{Type: EventTypeKey, Code: CodeBtnSouth},
		{Type: EventTypeKey, Code: CodeBtnNorth},
		{Type: EventTypeKey, Code: CodeBtnTR},
		{Type: EventTypeAbs, Code: CodeAbsZ},
		{Type: EventTypeAbs, Code: CodeAbsX},
		{Type: EventTypeAbs, Code: CodeAbsY},
		{Type: EventTypeSyn, Code: SynReportCode},
	}

	tracker := NewHoldTracker(DefaultControllerMap())
	for round := 0; round < 2000; round++ {
		for n := rng.Intn(5); n > 0; n-- {
			event := codes[rng.Intn(len(codes))]
			event.Value = int32(rng.Intn(65536) - 32768)
			if event.Type == EventTypeKey {
				event.Value = int32(rng.Intn(3))
			}
			tracker.Apply(event)
		}

		before := tracker.Counters()
		state := tracker.Tick()
		for i, counter := range before {
			if counter < 0 || counter > HoldTicks {
				t.Fatalf("round %d: counter[%d] = %d out of range", round, i, counter)
			}
			if state[i] != (counter > 0) {
				t.Fatalf("round %d: state[%d] = %v with counter %d", round, i, state[i], counter)
			}
		}
	}
}

func TestHoldTrackerCopiesMapping(t *testing.T) {
	mapping := DefaultControllerMap()
	tracker := NewHoldTracker(mapping)
	delete(mapping.Buttons, CodeBtnSouth)

	tracker.Apply(Event{Type: EventTypeKey, Code: CodeBtnSouth, Value: 1})
	if !tracker.Tick()[Jump] {
		t.Fatalf("tracker must not observe later edits to the mapping it was built from")
	}
}
