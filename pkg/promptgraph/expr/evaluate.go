// Package expr evaluates the small boolean condition language used by
// routing rules. Conditions compare variables and literals:
//
//	classification contains 'factual'
//	step_count >= 5
//	done == true and answer != ''
//
// Supported operators: ==, !=, <, >, <=, >=, contains, and, or, not, !.
// Comparisons with == and != are string-wise; the ordering operators are
// numeric. "and"/"or" split left to right without precedence or grouping.
// A bare expression is evaluated for truthiness.
package expr

import (
	"fmt"
	"strings"
)

// BinaryOp compares two resolved values.
type BinaryOp func(left, right any) bool

// Evaluator evaluates conditions, optionally extended with custom
// operators. Safe for concurrent use after construction.
type Evaluator struct {
	customOps map[string]BinaryOp
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCustomOperator registers a named infix operator. Names must not
// collide with built-in operators.
func WithCustomOperator(name string, fn BinaryOp) Option {
	return func(e *Evaluator) {
		if e.customOps == nil {
			e.customOps = make(map[string]BinaryOp)
		}
		e.customOps[name] = fn
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval evaluates a condition with a default Evaluator.
func Eval(condition string, vars map[string]any) (bool, error) {
	return New().Evaluate(condition, vars)
}

// builtinOps in match order; two-character operators come first so ">="
// is not split as ">".
var builtinOps = []struct {
	token   string
	compare BinaryOp
}{
	{"==", func(l, r any) bool { return fmt.Sprintf("%v", l) == fmt.Sprintf("%v", r) }},
	{"!=", func(l, r any) bool { return fmt.Sprintf("%v", l) != fmt.Sprintf("%v", r) }},
	{">=", func(l, r any) bool { return ToFloat64(l) >= ToFloat64(r) }},
	{"<=", func(l, r any) bool { return ToFloat64(l) <= ToFloat64(r) }},
	{">", func(l, r any) bool { return ToFloat64(l) > ToFloat64(r) }},
	{"<", func(l, r any) bool { return ToFloat64(l) < ToFloat64(r) }},
	{" contains ", func(l, r any) bool {
		return strings.Contains(fmt.Sprintf("%v", l), fmt.Sprintf("%v", r))
	}},
}

// Evaluate evaluates a condition against the provided variables. An empty
// condition is false.
func (e *Evaluator) Evaluate(condition string, vars map[string]any) (bool, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return false, nil
	}

	for _, prefix := range []string{"not ", "!"} {
		if strings.HasPrefix(condition, prefix) {
			inner := strings.TrimSpace(strings.TrimPrefix(condition, prefix))
			result, err := e.Evaluate(inner, vars)
			if err != nil {
				return false, err
			}
			return !result, nil
		}
	}

	if parts := strings.SplitN(condition, " and ", 2); len(parts) == 2 {
		left, err := e.Evaluate(parts[0], vars)
		if err != nil {
			return false, err
		}
		right, err := e.Evaluate(parts[1], vars)
		if err != nil {
			return false, err
		}
		return left && right, nil
	}

	if parts := strings.SplitN(condition, " or ", 2); len(parts) == 2 {
		left, err := e.Evaluate(parts[0], vars)
		if err != nil {
			return false, err
		}
		right, err := e.Evaluate(parts[1], vars)
		if err != nil {
			return false, err
		}
		return left || right, nil
	}

	for _, op := range builtinOps {
		if parts := strings.SplitN(condition, op.token, 2); len(parts) == 2 {
			left := Resolve(strings.TrimSpace(parts[0]), vars)
			right := Resolve(strings.TrimSpace(parts[1]), vars)
			return op.compare(left, right), nil
		}
	}

	for name, fn := range e.customOps {
		token := " " + name + " "
		if parts := strings.SplitN(condition, token, 2); len(parts) == 2 {
			left := Resolve(strings.TrimSpace(parts[0]), vars)
			right := Resolve(strings.TrimSpace(parts[1]), vars)
			return fn(left, right), nil
		}
	}

	return IsTruthy(Resolve(condition, vars)), nil
}
