package llm

import (
	"context"
	"sync"

	"trading-relay/internal/domain"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Result domain.CompletionResult
	Err    error

	mu    sync.Mutex
	Calls []domain.CompletionRequest
}

func (m *MockClient) Complete(_ context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	return m.Result, m.Err
}

// Set cambia la respuesta del mock de forma segura entre goroutines.
func (m *MockClient) Set(result domain.CompletionResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Result = result
	m.Err = err
}

// CallCount devuelve cuántas veces se llamó a Complete.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall devuelve la última request recibida.
func (m *MockClient) LastCall() (domain.CompletionRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return domain.CompletionRequest{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}
