package services

import (
	"context"
	"sync"
)

// MockEmailService records sent messages
type MockEmailService struct {
	sent []EmailMessage
	err  error
	mu   sync.Mutex
}

// NewMockEmailService creates a new mock mailer
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

// SetAsMockForTesting sets this mock as the global email instance for testing
func (m *MockEmailService) SetAsMockForTesting() {
	SetEmailService(m)
}

// FailWith makes subsequent sends return err
func (m *MockEmailService) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *MockEmailService) Send(ctx context.Context, msg EmailMessage) error {
	if err := validateEmail(msg); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of every recorded message
func (m *MockEmailService) Sent() []EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EmailMessage(nil), m.sent...)
}

// Clear forgets recorded messages
func (m *MockEmailService) Clear() {
	m.mu.Lock()
	m.sent = nil
	m.err = nil
	m.mu.Unlock()
}
