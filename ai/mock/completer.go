package mock

import (
	"context"
	"sync"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/core"
)

// MockCompleter is a test double for ai.Completer.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, the last human message is echoed back.
	CompleteFunc func(ctx context.Context, messages []ai.Message) (string, error)

	// FailTimes makes the first FailTimes calls fail with FailErr.
	FailTimes int

	// FailErr is returned by injected failures. Defaults to a transient
	// rate-limit error.
	FailErr error

	mu    sync.Mutex
	calls [][]ai.Message
}

// NewMockCompleter creates a mock completer with default echo behavior.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete records the messages and returns a canned or computed answer.
func (m *MockCompleter) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]ai.Message(nil), messages...))
	n := len(m.calls)
	m.mu.Unlock()

	if n <= m.FailTimes {
		if m.FailErr != nil {
			return "", m.FailErr
		}
		return "", core.Transient(ErrMockRateLimited)
	}

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages)
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleHuman {
			return "echo: " + messages[i].Content, nil
		}
	}
	return "", nil
}

// CallCount returns the number of Complete calls.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the message lists of every call in call order.
func (m *MockCompleter) Calls() [][]ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]ai.Message(nil), m.calls...)
}

// LastCall returns the messages of the most recent call, or nil.
func (m *MockCompleter) LastCall() []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

// Reset clears recorded calls and injected behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.FailTimes = 0
	m.FailErr = nil
	m.CompleteFunc = nil
}
