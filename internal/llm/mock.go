package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
// Si Responses/Errs tienen elementos se consumen en orden; si no, se usa Response/Err.
type MockClient struct {
	Response  ChatResponse
	Err       error
	Responses []ChatResponse
	Errs      []error

	mu       sync.Mutex
	Calls    int
	Requests []ChatRequest
}

func (m *MockClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.Calls
	m.Calls++
	m.Requests = append(m.Requests, req)

	if err := ctx.Err(); err != nil {
		return ChatResponse{}, err
	}
	if idx < len(m.Errs) && m.Errs[idx] != nil {
		return ChatResponse{}, m.Errs[idx]
	}
	if idx < len(m.Responses) {
		return m.Responses[idx], nil
	}
	return m.Response, m.Err
}
