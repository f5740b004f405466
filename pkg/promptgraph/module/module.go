// Package module provides prompt-level LM programs built on signatures:
// Predict renders a signature into a structured prompt and parses the
// completion back into named output fields, ChainOfThought extends a
// signature with an explicit reasoning step, and ReAct runs a bounded
// thought/action/observation loop over tools.
//
// Modules accept the client per call so the same module can run against any
// provider, and so graph nodes can pass the client carried by their
// execution context.
package module

import (
	"context"
	"fmt"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/llm"
)

// Inputs maps input field names to their values for one call.
type Inputs map[string]string

// Prediction is the parsed result of one module call.
type Prediction struct {
	// Outputs holds the parsed value for each output field in the
	// signature. Fields the completion did not produce are absent.
	Outputs map[string]string

	// Usage is the token consumption of the underlying call(s).
	Usage llm.TokenUsage

	// Raw is the unparsed completion text, kept for debugging and logging.
	Raw string
}

// Get returns the value of the named output field, or "" if absent.
func (p *Prediction) Get(field string) string {
	if p == nil {
		return ""
	}
	return p.Outputs[field]
}

// Module is an LM program with a declared signature.
type Module interface {
	// Signature returns the module's input/output contract.
	Signature() Signature

	// Run executes the module against the given client.
	Run(ctx context.Context, client llm.Client, inputs Inputs) (*Prediction, error)
}

// Demo is one worked example shown to the model before the live inputs.
// Bootstrapped demos carry the outputs a metric-passing run produced.
type Demo struct {
	Inputs  map[string]string `json:"inputs"`
	Outputs map[string]string `json:"outputs"`
}

// validateInputs checks that every signature input has a value.
func validateInputs(sig Signature, inputs Inputs) error {
	for _, f := range sig.Inputs {
		if _, ok := inputs[f.Name]; !ok {
			return fmt.Errorf("module: missing input field %q", f.Name)
		}
	}
	return nil
}
