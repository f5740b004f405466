package promptgraph

import (
	"context"
)

// Test state types used across tests

// Counter is a simple state for testing incrementing.
type Counter struct {
	Value int
}

// QAState mirrors a question-answering pipeline: classification drives
// routing and the answer accumulates.
type QAState struct {
	Question       string
	Classification string
	Answer         string
	StepCount      int
	Progress       []string
	Done           bool
}

// increment is a node that increments the counter.
func increment(ctx Context, s Counter) (Counter, error) {
	s.Value++
	return s, nil
}

// makeTrackingNode creates a node that records its execution.
func makeTrackingNode(name string, tracker *[]string) NodeFunc[QAState] {
	return func(ctx Context, s QAState) (QAState, error) {
		*tracker = append(*tracker, name)
		s.Progress = append(s.Progress, name)
		return s, nil
	}
}

// makeFailingNode creates a node that returns the given error.
func makeFailingNode(err error) NodeFunc[QAState] {
	return func(ctx Context, s QAState) (QAState, error) {
		return s, err
	}
}

// makePanicNode creates a node that panics with the given value.
func makePanicNode(value any) NodeFunc[QAState] {
	return func(ctx Context, s QAState) (QAState, error) {
		panic(value)
	}
}

// testCtx creates a simple test context.
func testCtx() Context {
	return NewContext(context.Background())
}
