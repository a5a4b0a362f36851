package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/studyrooms-api/internal/events"
	"github.com/phrazzld/studyrooms-api/internal/generation"
)

// Response is one canned provider answer.
type Response struct {
	Text string
	Err  error
}

// MockProvider implements generation.Provider with canned answers served
// in order. The last answer repeats once the queue is exhausted.
type MockProvider struct {
	ProviderName string
	Responses    []Response

	mu       sync.Mutex
	Requests []generation.Request
}

var _ generation.Provider = (*MockProvider)(nil)

// Name implements generation.Provider.
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Invoke implements generation.Provider.
func (m *MockProvider) Invoke(ctx context.Context, req generation.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.Responses) == 0 {
		return "", generation.ErrInvalidResponse
	}
	i := len(m.Requests) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i].Text, m.Responses[i].Err
}

// CallCount returns how many times Invoke ran.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// RecordingEmitter implements events.EventEmitter by recording every event.
type RecordingEmitter struct {
	EmitErr error

	mu     sync.Mutex
	Events []*events.TaskRequestEvent
}

var _ events.EventEmitter = (*RecordingEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (e *RecordingEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, event)
	return e.EmitErr
}

// Count returns the number of events emitted.
func (e *RecordingEmitter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Events)
}
