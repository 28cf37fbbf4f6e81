package mocks

import (
	"context"
	"sync"

	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// MockRecorder captures attempt records for assertions.
type MockRecorder struct {
	mu      sync.Mutex
	Records []ports.AttemptRecord
	Err     error
}

// NewMockRecorder creates a new mock recorder
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{}
}

// Record captures the attempt record
func (m *MockRecorder) Record(ctx context.Context, rec ports.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Records = append(m.Records, rec)
	return nil
}

// RecordCount returns how many records were captured
func (m *MockRecorder) RecordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Records)
}
