package module

import (
	"context"
	"fmt"
	"strings"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/llm"
	"github.com/rmckinnon/promptgraph/pkg/promptgraph/tool"
)

// FinishAction is the sentinel the model uses to end a ReAct loop and
// report its final answer.
const FinishAction = "finish"

// DefaultMaxSteps bounds a ReAct loop when no limit is configured.
const DefaultMaxSteps = 5

// MaxStepsAnswer is the answer a ReAct run reports when the step limit is
// reached before the model finishes.
const MaxStepsAnswer = "I've reached the maximum number of reasoning steps. Based on my analysis so far, I may need more information or a different approach to fully solve this problem."

// Step is one thought/action/observation cycle of a ReAct run.
type Step struct {
	Thought     string `json:"thought"`
	Action      string `json:"action"`
	Observation string `json:"observation"`
}

// ReActResult is the outcome of a ReAct run.
type ReActResult struct {
	Answer string         `json:"answer"`
	Steps  []Step         `json:"steps"`
	Usage  llm.TokenUsage `json:"usage"`

	// Forced is true when the step limit cut the loop short and Answer
	// is MaxStepsAnswer rather than a model-produced finish.
	Forced bool `json:"forced"`
}

// ReAct runs a bounded reasoning loop: each step the model produces a
// thought and an action of the form "tool: input"; the tool's observation
// is appended to the context of the next step. The loop ends when the
// model emits "finish: answer" or the step limit is reached.
type ReAct struct {
	predict  *Predict
	tools    *tool.Set
	maxSteps int
}

// ReActOption configures a ReAct module.
type ReActOption func(*ReAct)

// WithReActMaxSteps sets the step limit. Values below one fall back to
// DefaultMaxSteps.
func WithReActMaxSteps(n int) ReActOption {
	return func(r *ReAct) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

// WithReActPredictOptions forwards options to the underlying Predict.
func WithReActPredictOptions(opts ...PredictOption) ReActOption {
	return func(r *ReAct) {
		for _, opt := range opts {
			opt(r.predict)
		}
	}
}

// NewReAct creates a ReAct module over the given tools. The reasoning
// signature is built dynamically so the action field's description lists
// exactly the tools the loop can execute.
func NewReAct(tools *tool.Set, opts ...ReActOption) *ReAct {
	r := &ReAct{
		predict:  NewPredict(reactSignature(tools)),
		tools:    tools,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Signature implements Module.
func (r *ReAct) Signature() Signature { return r.predict.Signature() }

// Run implements Module. The "question" input is required.
func (r *ReAct) Run(ctx context.Context, client llm.Client, inputs Inputs) (*Prediction, error) {
	result, err := r.Execute(ctx, client, inputs["question"])
	if err != nil {
		return nil, err
	}
	return &Prediction{
		Outputs: map[string]string{"answer": result.Answer},
		Usage:   result.Usage,
	}, nil
}

// Execute runs the loop and returns the full trace.
func (r *ReAct) Execute(ctx context.Context, client llm.Client, question string) (*ReActResult, error) {
	if question == "" {
		return nil, fmt.Errorf("module: missing input field %q", "question")
	}

	result := &ReActResult{}

	for stepNum := 0; stepNum < r.maxSteps; stepNum++ {
		pred, err := r.predict.Run(ctx, client, Inputs{
			"question":       question,
			"previous_steps": formatSteps(result.Steps),
		})
		if err != nil {
			return nil, fmt.Errorf("module: react step %d: %w", stepNum+1, err)
		}
		result.Usage.Add(pred.Usage)

		step := Step{
			Thought: pred.Get("thought"),
			Action:  pred.Get("action"),
		}

		toolName, toolInput := ParseAction(step.Action)
		if toolName == FinishAction {
			step.Observation = "Task completed with answer: " + toolInput
			result.Steps = append(result.Steps, step)
			result.Answer = toolInput
			return result, nil
		}

		observation, err := r.tools.Execute(ctx, toolName, toolInput)
		if err != nil {
			step.Observation = fmt.Sprintf("Tool %q failed: %v", toolName, err)
		} else {
			step.Observation = fmt.Sprintf("Tool %q returned: %s", toolName, observation)
		}
		result.Steps = append(result.Steps, step)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	result.Answer = MaxStepsAnswer
	result.Forced = true
	return result, nil
}

// ParseAction splits an action string into tool name and input.
//
// "calculator: 2 + 3" parses to ("calculator", "2 + 3"). A bare "finish"
// with no colon still finishes, and an action with no recognizable shape
// is treated as a finish carrying the whole text, so a model that answers
// directly instead of acting still terminates the loop.
func ParseAction(action string) (toolName, toolInput string) {
	action = strings.TrimSpace(action)

	if idx := strings.Index(action, ":"); idx >= 0 {
		return strings.ToLower(strings.TrimSpace(action[:idx])), strings.TrimSpace(action[idx+1:])
	}
	if strings.HasPrefix(strings.ToLower(action), FinishAction) {
		return FinishAction, strings.TrimSpace(action[len(FinishAction):])
	}
	return FinishAction, action
}

// reactSignature builds the reasoning signature, listing each tool in the
// action field's description.
func reactSignature(tools *tool.Set) Signature {
	var descriptions []string
	for _, name := range tools.Names() {
		if t, ok := tools.Get(name); ok {
			descriptions = append(descriptions, fmt.Sprintf("'%s: <input>' - %s", name, t.Description()))
		}
	}
	descriptions = append(descriptions, "'finish: <final_answer>'")

	return NewSignature("Solve the question step by step, using tools when they help.").
		WithInput("question", "The question to solve").
		WithInput("previous_steps", "Previous thoughts, actions, and observations").
		WithOutput("thought", "Current reasoning step - what you're thinking about the problem").
		WithOutput("action", "Action to take: "+strings.Join(descriptions, " or "))
}

// formatSteps renders the trace so far for the previous_steps input.
func formatSteps(steps []Step) string {
	if len(steps) == 0 {
		return "This is the first step."
	}

	var b strings.Builder
	for i, s := range steps {
		fmt.Fprintf(&b, "Step %d:\n", i+1)
		fmt.Fprintf(&b, "  Thought: %s\n", s.Thought)
		fmt.Fprintf(&b, "  Action: %s\n", s.Action)
		fmt.Fprintf(&b, "  Observation: %s\n", s.Observation)
	}
	return strings.TrimRight(b.String(), "\n")
}
