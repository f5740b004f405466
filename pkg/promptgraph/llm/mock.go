package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests and examples. Responses are
// returned in order; when the script runs out, the last response repeats.
type MockClient struct {
	mu        sync.Mutex
	responses []string
	calls     int
	requests  []CompletionRequest
	err       error
}

// NewMockClient creates a mock that returns the given responses in order.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{responses: responses}
}

// WithError makes every call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewError("complete", err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}

	content := ""
	if len(m.responses) > 0 {
		idx := m.calls
		if idx >= len(m.responses) {
			idx = len(m.responses) - 1
		}
		content = m.responses[idx]
	}
	m.calls++

	return &CompletionResponse{
		Content:      content,
		Model:        "mock",
		FinishReason: "stop",
		Usage: TokenUsage{
			InputTokens:  promptTokens(req),
			OutputTokens: len(content) / 4,
			TotalTokens:  promptTokens(req) + len(content)/4,
		},
	}, nil
}

// Stream implements Client by emitting the whole response as one chunk.
func (m *MockClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	ch := make(chan StreamChunk, 2)
	ch <- StreamChunk{Content: resp.Content}
	usage := resp.Usage
	ch <- StreamChunk{Done: true, Usage: &usage}
	close(ch)
	return ch, nil
}

// CallCount returns how many Complete calls the mock has served.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or a zero value if none.
func (m *MockClient) LastRequest() CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return CompletionRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// Requests returns a copy of all recorded requests.
func (m *MockClient) Requests() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompletionRequest(nil), m.requests...)
}

// promptTokens is a rough size estimate for mock usage accounting.
func promptTokens(req CompletionRequest) int {
	n := len(req.SystemPrompt)
	for _, msg := range req.Messages {
		n += len(msg.Content)
	}
	return n / 4
}
