package mocks

import (
	"sync"

	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// MockLogger is a mock implementation of Logger for testing
type MockLogger struct {
	mu         sync.Mutex
	InfoCalls  []LogCall
	ErrorCalls []LogCall
	WarnCalls  []LogCall
	DebugCalls []LogCall
}

// LogCall represents a captured log call
type LogCall struct {
	Message string
	Fields  []ports.Field
}

// NewMockLogger creates a new mock logger
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// Info logs an info message
func (m *MockLogger) Info(msg string, fields ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, LogCall{Message: msg, Fields: fields})
}

// Error logs an error message
func (m *MockLogger) Error(msg string, fields ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, LogCall{Message: msg, Fields: fields})
}

// Warn logs a warning message
func (m *MockLogger) Warn(msg string, fields ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarnCalls = append(m.WarnCalls, LogCall{Message: msg, Fields: fields})
}

// Debug logs a debug message
func (m *MockLogger) Debug(msg string, fields ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DebugCalls = append(m.DebugCalls, LogCall{Message: msg, Fields: fields})
}

// FieldValues flattens every captured field into key/value pairs, used by
// tests asserting that sensitive values never reach the logs.
func (m *MockLogger) FieldValues() map[string][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]interface{})
	for _, calls := range [][]LogCall{m.InfoCalls, m.ErrorCalls, m.WarnCalls, m.DebugCalls} {
		for _, call := range calls {
			for _, f := range call.Fields {
				out[f.Key] = append(out[f.Key], f.Value)
			}
		}
	}
	return out
}
