// Package testutil provides mocks and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/batch-image-converter/backend/internal/convert"
)

// MockConvertService is a controllable convert.Service for tests. Failures
// and delays are keyed by the source blob's content so tests can target
// individual entries without knowing ids.
type MockConvertService struct {
	mu sync.Mutex

	// Result returned on success; defaults to a fixed marker blob.
	Result []byte

	// FailFor maps source content to an error message.
	FailFor map[string]string

	// DelayFor maps source content to an artificial per-call delay.
	DelayFor map[string]time.Duration

	calls []convert.Options
}

// NewMockConvertService creates a mock that succeeds for every input.
func NewMockConvertService() *MockConvertService {
	return &MockConvertService{
		Result:   []byte("converted-bytes"),
		FailFor:  make(map[string]string),
		DelayFor: make(map[string]time.Duration),
	}
}

// Convert implements convert.Service.
func (m *MockConvertService) Convert(ctx context.Context, data []byte, opts convert.Options) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	delay := m.DelayFor[string(data)]
	failMsg, fail := m.FailFor[string(data)]
	result := m.Result
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, fmt.Errorf("%s", failMsg)
	}
	return result, nil
}

// Calls returns the options of every conversion issued so far.
func (m *MockConvertService) Calls() []convert.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]convert.Options, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many conversions were issued.
func (m *MockConvertService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
