package services

import (
	"context"
	"sync"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	events []Event
	mu     sync.Mutex
}

// NewMockEventPublisher creates a new mock publisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// SetAsMockForTesting sets this mock as the global publisher for testing
func (m *MockEventPublisher) SetAsMockForTesting() {
	SetEventPublisher(m)
}

func (m *MockEventPublisher) Publish(ctx context.Context, event Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// Events returns a copy of the recorded events
func (m *MockEventPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// OfType returns the recorded events with the given type
func (m *MockEventPublisher) OfType(eventType string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Clear forgets recorded events
func (m *MockEventPublisher) Clear() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
