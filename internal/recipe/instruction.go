package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingTechnique is returned when an instruction that needs a technique
// to render or serialize has none.
var ErrMissingTechnique = errors.New("instruction has no technique")

// Technique is a named operation that renders an instruction to text.
type Technique interface {
	// Key is the stable identifier used in serialized form.
	Key() string
	// EvalTemplate renders the parameters. It must not mutate them.
	EvalTemplate(Parameters) (string, error)
}

// Instruction is one step of a method: either a text leaf or a technique
// applied with parameters.
type Instruction struct {
	text       string
	leaf       bool
	technique  Technique
	parameters Parameters
}

// Text creates a text-leaf instruction that renders verbatim.
func Text(s string) *Instruction {
	return &Instruction{text: s, leaf: true}
}

// NewInstruction creates a technique instruction. The technique is not
// checked here; a nil technique fails on Render or MarshalJSON.
func NewInstruction(t Technique, p Parameters) *Instruction {
	return &Instruction{technique: t, parameters: p}
}

// IsText reports whether the instruction is a text leaf.
func (i *Instruction) IsText() bool { return i.leaf }

// Technique returns the technique, nil for text leaves.
func (i *Instruction) Technique() Technique { return i.technique }

// Parameters returns a copy of the parameters.
func (i *Instruction) Parameters() Parameters { return i.parameters.Clone() }

// Render returns the text of the instruction.
func (i *Instruction) Render() (string, error) {
	if i.leaf {
		return i.text, nil
	}
	if i.technique == nil {
		return "", ErrMissingTechnique
	}
	out, err := i.technique.EvalTemplate(i.parameters)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", i.technique.Key(), err)
	}
	return out, nil
}

// String renders the instruction, or a bracketed error when rendering fails.
func (i *Instruction) String() string {
	out, err := i.Render()
	if err != nil {
		return "[" + err.Error() + "]"
	}
	return out
}

type instructionJSON struct {
	Technique  string     `json:"technique"`
	Parameters Parameters `json:"parameters"`
}

// MarshalJSON encodes a text leaf as a string and a technique instruction as
// {"technique": key, "parameters": {...}}.
func (i *Instruction) MarshalJSON() ([]byte, error) {
	if i.leaf {
		return json.Marshal(i.text)
	}
	if i.technique == nil {
		return nil, ErrMissingTechnique
	}
	return json.Marshal(instructionJSON{Technique: i.technique.Key(), Parameters: i.parameters})
}

// resolve returns a fresh instruction with parameters bound through resolver.
func (i *Instruction) resolve(resolver Resolver) *Instruction {
	if i.leaf {
		return Text(i.text)
	}
	return NewInstruction(i.technique, i.parameters.Resolve(resolver))
}
