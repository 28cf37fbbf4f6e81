package mocks

import (
	"context"
	"sync"

	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// MockGateway is a mock SubmissionGateway. Result and Err program the
// next resolution; Block makes Submit wait until Release is called, for
// tests that race a close against an in-flight call.
type MockGateway struct {
	mu       sync.Mutex
	Result   *ports.NormalizedResult
	Err      error
	Requests []ports.SubmitRequest

	blockCh chan struct{}
}

// NewMockGateway creates a new mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Block makes subsequent Submit calls wait until Release.
func (m *MockGateway) Block() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockCh = make(chan struct{})
}

// Release unblocks a blocked Submit.
func (m *MockGateway) Release() {
	m.mu.Lock()
	ch := m.blockCh
	m.blockCh = nil
	m.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// Submit records the request and returns the programmed resolution.
func (m *MockGateway) Submit(ctx context.Context, req ports.SubmitRequest) (*ports.NormalizedResult, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	ch := m.blockCh
	result := m.Result
	err := m.Err
	m.mu.Unlock()

	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		// Re-read after release so tests can reprogram while blocked.
		m.mu.Lock()
		result = m.Result
		err = m.Err
		m.mu.Unlock()
	}

	return result, err
}

// SubmitCount returns how many Submit calls were made.
func (m *MockGateway) SubmitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
