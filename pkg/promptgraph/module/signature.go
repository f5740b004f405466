package module

import (
	"fmt"
	"strings"
)

// Field is one named input or output of a signature. The description is
// shown to the model as part of the prompt scaffold, so it should say what
// the field holds, not how it is used internally.
type Field struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Signature is the typed contract of an LM module: instructions plus ordered
// input and output fields. Modules render it into a prompt and parse
// completions back into the output fields.
type Signature struct {
	Instructions string  `json:"instructions,omitempty"`
	Inputs       []Field `json:"inputs"`
	Outputs      []Field `json:"outputs"`
}

// NewSignature starts a signature with the given instructions.
func NewSignature(instructions string) Signature {
	return Signature{Instructions: instructions}
}

// WithInput appends an input field. Returns the signature for chaining.
func (s Signature) WithInput(name, description string) Signature {
	s.Inputs = append(append([]Field(nil), s.Inputs...), Field{Name: name, Description: description})
	return s
}

// WithOutput appends an output field. Returns the signature for chaining.
func (s Signature) WithOutput(name, description string) Signature {
	s.Outputs = append(append([]Field(nil), s.Outputs...), Field{Name: name, Description: description})
	return s
}

// ParseSignature parses compact "in1, in2 -> out1, out2" notation.
// Field names must be non-empty; descriptions are left blank.
func ParseSignature(notation string) (Signature, error) {
	parts := strings.Split(notation, "->")
	if len(parts) != 2 {
		return Signature{}, fmt.Errorf("signature %q: expected exactly one '->'", notation)
	}

	parse := func(side, kind string) ([]Field, error) {
		var fields []Field
		for _, name := range strings.Split(side, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("signature %q: empty %s field", notation, kind)
			}
			fields = append(fields, Field{Name: name})
		}
		return fields, nil
	}

	inputs, err := parse(parts[0], "input")
	if err != nil {
		return Signature{}, err
	}
	outputs, err := parse(parts[1], "output")
	if err != nil {
		return Signature{}, err
	}

	return Signature{Inputs: inputs, Outputs: outputs}, nil
}

// MustParseSignature is ParseSignature that panics on malformed notation.
// For use with literal notation in variable initializers.
func MustParseSignature(notation string) Signature {
	sig, err := ParseSignature(notation)
	if err != nil {
		panic("module: " + err.Error())
	}
	return sig
}

// hasOutput reports whether the signature declares the named output.
func (s Signature) hasOutput(name string) bool {
	for _, f := range s.Outputs {
		if f.Name == name {
			return true
		}
	}
	return false
}

// fieldTitle renders a field name as a prompt heading: "final_answer"
// becomes "Final Answer".
func fieldTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == ' ' || r == '-'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
