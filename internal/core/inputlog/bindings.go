package inputlog

import "fmt"

// Bindings maps each input, by position, to a control code.
type Bindings [NumInputs]uint16

func DefaultBindings() Bindings {
	return Bindings{
		Left:      CodeKeyLeft,
		Right:     CodeKeyRight,
		Up:        CodeKeyUp,
		Down:      CodeKeyDown,
		Jump:      CodeKeySpace,
		Dash:      CodeKeyC,
		Attack:    CodeKeyX,
		SuperDash: CodeKeyS,
		DreamNail: CodeKeyD,
		Cast:      CodeKeyF,
		Focus:     CodeKeyA,
	}
}

// Lookup returns the first input bound to code. Duplicate bindings are
// allowed; only the lowest index ever matches.
func (b Bindings) Lookup(code uint16) (Input, bool) {
	for i, bound := range b {
		if bound == code {
			return Input(i), true
		}
	}
	return NoInput, false
}

func (b Bindings) With(input Input, code uint16) (Bindings, error) {
	if !input.Valid() {
		return b, fmt.Errorf("invalid input index %d", int(input))
	}
	b[input] = code
	return b, nil
}
