package mocks

import (
	"context"
	"sync"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// MockChannel is an in-process MessageChannel for testing. Sent commands
// are captured; inbound messages are injected with Inject.
type MockChannel struct {
	mu          sync.Mutex
	handler     ports.MessageHandler
	Sent        []domain.OutboundCommand
	SendErr     error
	AttachErr   error
	AttachCount int
	DetachCount int
}

// NewMockChannel creates a new mock channel
func NewMockChannel() *MockChannel {
	return &MockChannel{}
}

// Attach installs the handler
func (m *MockChannel) Attach(handler ports.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AttachErr != nil {
		return m.AttachErr
	}
	m.handler = handler
	m.AttachCount++
	return nil
}

// Detach removes the handler
func (m *MockChannel) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = nil
	m.DetachCount++
}

// Send captures the outbound command
func (m *MockChannel) Send(ctx context.Context, cmd domain.OutboundCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, cmd)
	return nil
}

// Inject delivers an inbound message to the attached handler, if any.
func (m *MockChannel) Inject(msg domain.InboundMessage) {
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()
	if handler != nil {
		handler(msg)
	}
}

// SentActions returns the actions of all captured commands, in order.
func (m *MockChannel) SentActions() []domain.OutboundAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]domain.OutboundAction, len(m.Sent))
	for i, cmd := range m.Sent {
		actions[i] = cmd.Action
	}
	return actions
}
