package module

import (
	"context"
	"fmt"
	"strings"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/llm"
	"github.com/rmckinnon/promptgraph/pkg/promptgraph/template"
)

// Predict renders a signature into a field-structured prompt, calls the
// client once, and parses the completion back into the signature's output
// fields.
//
// Demos installed with SetDemos (by hand or by a compiler) are shown as
// worked examples before the live inputs. Instructions may contain ${field}
// placeholders, which are expanded with the call's input values.
type Predict struct {
	sig         Signature
	demos       []Demo
	model       string
	maxTokens   int
	temperature float64
	expander    *template.Expander
}

// PredictOption configures a Predict module.
type PredictOption func(*Predict)

// WithModel overrides the client's default model for this module.
func WithModel(model string) PredictOption {
	return func(p *Predict) { p.model = model }
}

// WithMaxTokens caps the completion length for this module.
func WithMaxTokens(n int) PredictOption {
	return func(p *Predict) { p.maxTokens = n }
}

// WithTemperature sets the sampling temperature for this module.
func WithTemperature(t float64) PredictOption {
	return func(p *Predict) { p.temperature = t }
}

// WithDemos installs initial demos.
func WithDemos(demos []Demo) PredictOption {
	return func(p *Predict) { p.demos = demos }
}

// NewPredict creates a Predict module for the given signature.
func NewPredict(sig Signature, opts ...PredictOption) *Predict {
	p := &Predict{
		sig:      sig,
		expander: template.NewExpander(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Signature implements Module.
func (p *Predict) Signature() Signature { return p.sig }

// Demos returns the currently installed demos.
func (p *Predict) Demos() []Demo { return p.demos }

// SetDemos replaces the installed demos. Compilers call this with
// bootstrapped examples.
func (p *Predict) SetDemos(demos []Demo) { p.demos = demos }

// Run implements Module. It makes one completion call and parses the
// output fields from the response text.
func (p *Predict) Run(ctx context.Context, client llm.Client, inputs Inputs) (*Prediction, error) {
	if client == nil {
		return nil, fmt.Errorf("module: nil client")
	}
	if err := validateInputs(p.sig, inputs); err != nil {
		return nil, err
	}

	resp, err := client.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: p.systemPrompt(inputs),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: p.userPrompt(inputs)},
		},
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return nil, err
	}

	return &Prediction{
		Outputs: parseFields(p.sig, resp.Content),
		Usage:   resp.Usage,
		Raw:     resp.Content,
	}, nil
}

// systemPrompt renders instructions plus the format contract.
func (p *Predict) systemPrompt(inputs Inputs) string {
	var b strings.Builder

	instructions := p.sig.Instructions
	if instructions == "" {
		instructions = defaultInstructions(p.sig)
	}
	vars := make(map[string]any, len(inputs))
	for k, v := range inputs {
		vars[k] = v
	}
	b.WriteString(p.expander.MustExpand(instructions, vars))

	b.WriteString("\n\nFollow the following format.\n\n")
	for _, f := range p.sig.Inputs {
		fmt.Fprintf(&b, "%s: %s\n", fieldTitle(f.Name), fieldHint(f))
	}
	for _, f := range p.sig.Outputs {
		fmt.Fprintf(&b, "%s: %s\n", fieldTitle(f.Name), fieldHint(f))
	}

	return b.String()
}

// userPrompt renders demos followed by the live inputs, ending with the
// first output field's heading to cue the completion.
func (p *Predict) userPrompt(inputs Inputs) string {
	var b strings.Builder

	for _, demo := range p.demos {
		writeFieldBlock(&b, p.sig.Inputs, demo.Inputs)
		writeFieldBlock(&b, p.sig.Outputs, demo.Outputs)
		b.WriteString("\n---\n\n")
	}

	writeFieldBlock(&b, p.sig.Inputs, inputs)
	if len(p.sig.Outputs) > 0 {
		fmt.Fprintf(&b, "%s:", fieldTitle(p.sig.Outputs[0].Name))
	}

	return b.String()
}

func writeFieldBlock(b *strings.Builder, fields []Field, values map[string]string) {
	for _, f := range fields {
		if v, ok := values[f.Name]; ok {
			fmt.Fprintf(b, "%s: %s\n", fieldTitle(f.Name), v)
		}
	}
}

func fieldHint(f Field) string {
	if f.Description != "" {
		return f.Description
	}
	return "the " + strings.ReplaceAll(f.Name, "_", " ")
}

func defaultInstructions(sig Signature) string {
	var in, out []string
	for _, f := range sig.Inputs {
		in = append(in, fieldTitle(f.Name))
	}
	for _, f := range sig.Outputs {
		out = append(out, fieldTitle(f.Name))
	}
	return fmt.Sprintf("Given the fields %s, produce the fields %s.",
		strings.Join(in, ", "), strings.Join(out, ", "))
}

// parseFields extracts output field values from completion text.
//
// The completion is scanned line by line for "Title:" headings matching the
// signature's output fields. A field's value runs until the next heading.
// Because the prompt ends with the first output heading, a completion that
// starts mid-value is attributed to that first field. If no heading is
// found at all and the signature has a single output, the whole completion
// is taken as its value.
func parseFields(sig Signature, content string) map[string]string {
	titles := make(map[string]string, len(sig.Outputs))
	for _, f := range sig.Outputs {
		titles[strings.ToLower(fieldTitle(f.Name))] = f.Name
	}

	outputs := make(map[string]string)
	current := ""
	if len(sig.Outputs) > 0 {
		current = sig.Outputs[0].Name
	}
	var value []string

	flush := func() {
		if current == "" {
			return
		}
		v := strings.TrimSpace(strings.Join(value, "\n"))
		if v != "" {
			if _, seen := outputs[current]; !seen {
				outputs[current] = v
			}
		}
		value = nil
	}

	for _, line := range strings.Split(content, "\n") {
		if name, rest, ok := matchHeading(line, titles); ok {
			flush()
			current = name
			if rest != "" {
				value = append(value, rest)
			}
			continue
		}
		value = append(value, line)
	}
	flush()

	if len(outputs) == 0 && len(sig.Outputs) == 1 {
		if v := strings.TrimSpace(content); v != "" {
			outputs[sig.Outputs[0].Name] = v
		}
	}

	return outputs
}

// matchHeading reports whether line starts with a known "Title:" heading,
// returning the field name and the remainder of the line.
func matchHeading(line string, titles map[string]string) (name, rest string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	title := strings.ToLower(strings.TrimSpace(line[:idx]))
	fieldName, known := titles[title]
	if !known {
		return "", "", false
	}
	return fieldName, strings.TrimSpace(line[idx+1:]), true
}
