package notifier

import (
	"context"
	"sync"
)

// MockNotifier records every message instead of sending it.
type MockNotifier struct {
	mu   sync.Mutex
	sent []Message

	// SendErr, when set, is returned by every Send. The message is still recorded.
	SendErr error
}

func (m *MockNotifier) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.SendErr
}

// Sent returns a copy of every message passed to Send.
func (m *MockNotifier) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
