package inputlog

import (
	"fmt"
	"strings"
)

// Input is one logical game action. Its value is the column index used in
// every log line.
type Input int

const (
	Left Input = iota
	Right
	Up
	Down
	Jump
	Dash
	Attack
	SuperDash
	DreamNail
	Cast
	Focus
)

const NumInputs = 11

// NoInput marks an unset slot, e.g. the missing half of a stick mapping.
const NoInput Input = -1

var inputNames = [NumInputs]string{
	"left", "right", "up", "down", "jump", "dash",
	"attack", "superdash", "dreamnail", "cast", "focus",
}

func (i Input) Valid() bool {
	return i >= 0 && int(i) < NumInputs
}

func (i Input) String() string {
	if !i.Valid() {
		return fmt.Sprintf("input(%d)", int(i))
	}
	return inputNames[i]
}

func Inputs() []Input {
	out := make([]Input, NumInputs)
	for i := range out {
		out[i] = Input(i)
	}
	return out
}

func InputNames() []string {
	out := make([]string, NumInputs)
	copy(out, inputNames[:])
	return out
}

func ParseInput(name string) (Input, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range inputNames {
		if candidate == needle {
			return Input(i), nil
		}
	}
	return NoInput, fmt.Errorf("unknown input %q", name)
}

// State is the held flag of every input, in column order.
type State [NumInputs]bool

func (s State) Active() []Input {
	out := make([]Input, 0, NumInputs)
	for i, held := range s {
		if held {
			out = append(out, Input(i))
		}
	}
	return out
}

func (s State) Or(other State) State {
	for i := range s {
		s[i] = s[i] || other[i]
	}
	return s
}
