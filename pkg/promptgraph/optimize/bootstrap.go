// Package optimize compiles modules against training data. BootstrapFewShot
// runs a module over a trainset, keeps the traces a metric accepts, and
// installs them as demos, so a module's few-shot examples are earned rather
// than hand-written.
package optimize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/llm"
	"github.com/rmckinnon/promptgraph/pkg/promptgraph/module"
)

// Example is one training item: field values plus which of them are
// inputs. Non-input fields are the expected outputs a metric can check
// against.
type Example struct {
	values    map[string]string
	inputKeys map[string]bool
}

// NewExample creates an example. Fields named in inputKeys become module
// inputs; the rest are labels.
func NewExample(values map[string]string, inputKeys ...string) Example {
	keys := make(map[string]bool, len(inputKeys))
	for _, k := range inputKeys {
		keys[k] = true
	}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Example{values: copied, inputKeys: keys}
}

// Get returns the value of a field, input or label.
func (e Example) Get(field string) string { return e.values[field] }

// Inputs returns the input fields as module inputs.
func (e Example) Inputs() module.Inputs {
	inputs := make(module.Inputs, len(e.inputKeys))
	for k := range e.inputKeys {
		inputs[k] = e.values[k]
	}
	return inputs
}

// Metric judges whether a prediction for an example is good enough to keep
// as a demo.
type Metric func(example Example, pred *module.Prediction) bool

// ExactMatch returns a metric that compares the named output field against
// the example's label for that field.
func ExactMatch(field string) Metric {
	return func(example Example, pred *module.Prediction) bool {
		return pred.Get(field) == example.Get(field)
	}
}

// Report summarizes a compilation run.
type Report struct {
	Attempted int
	Passed    int
	Demos     []module.Demo
	Usage     llm.TokenUsage
}

// BootstrapFewShot bootstraps demos for a module by self-generation.
type BootstrapFewShot struct {
	metric   Metric
	maxDemos int
	logger   *slog.Logger
}

// BootstrapOption configures a BootstrapFewShot compiler.
type BootstrapOption func(*BootstrapFewShot)

// WithMaxDemos caps how many demos are bootstrapped. Default 4.
func WithMaxDemos(n int) BootstrapOption {
	return func(b *BootstrapFewShot) {
		if n > 0 {
			b.maxDemos = n
		}
	}
}

// WithLogger sets the progress logger. Default slog.Default().
func WithLogger(logger *slog.Logger) BootstrapOption {
	return func(b *BootstrapFewShot) { b.logger = logger }
}

// NewBootstrapFewShot creates a compiler with the given metric.
func NewBootstrapFewShot(metric Metric, opts ...BootstrapOption) *BootstrapFewShot {
	b := &BootstrapFewShot{
		metric:   metric,
		maxDemos: 4,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Compile runs target over the trainset, keeps metric-passing traces as
// demos, and installs them on the target. The target runs with whatever
// demos it already carries, so compilation can be iterated.
//
// A call that fails is logged and skipped; only a context cancellation
// aborts the run. The returned report says how many examples were
// attempted and kept, and what the run cost.
func (b *BootstrapFewShot) Compile(ctx context.Context, client llm.Client, target *module.Predict, trainset []Example) (*Report, error) {
	if b.metric == nil {
		return nil, fmt.Errorf("optimize: nil metric")
	}
	if len(trainset) == 0 {
		return nil, fmt.Errorf("optimize: empty trainset")
	}

	report := &Report{}

	for i, example := range trainset {
		if len(report.Demos) >= b.maxDemos {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		report.Attempted++
		pred, err := target.Run(ctx, client, example.Inputs())
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			b.logger.Warn("bootstrap example failed",
				"example", i,
				"error", err)
			continue
		}
		report.Usage.Add(pred.Usage)

		if !b.metric(example, pred) {
			b.logger.Debug("bootstrap example rejected by metric", "example", i)
			continue
		}

		report.Passed++
		report.Demos = append(report.Demos, module.Demo{
			Inputs:  example.Inputs(),
			Outputs: pred.Outputs,
		})
	}

	target.SetDemos(report.Demos)
	b.logger.Info("bootstrap compile complete",
		"attempted", report.Attempted,
		"passed", report.Passed,
		"demos", len(report.Demos),
		"total_tokens", report.Usage.TotalTokens)

	return report, nil
}
