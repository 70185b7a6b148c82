package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"go.uber.org/zap"
)

// SentMessage is one send recorded by MockSender
type SentMessage struct {
	SID  string
	To   string
	From string
	Body string
}

// MockSender logs sends instead of contacting a provider
type MockSender struct {
	mu   sync.Mutex
	sent []SentMessage
	fail map[string]bool
}

// NewMockSender creates a MockSender that accepts every send
func NewMockSender() *MockSender {
	return &MockSender{fail: make(map[string]bool)}
}

// FailFor makes sends to the given recipients fail
func (m *MockSender) FailFor(numbers ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range numbers {
		m.fail[n] = true
	}
}

func (m *MockSender) Name() string {
	return "mock"
}

func (m *MockSender) Send(ctx context.Context, to, from, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{Provider: m.Name(), To: to, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail[to] {
		logger.Warn("Mock SMS send failed", zap.String("to", to), zap.String("from", from))
		return "", &Error{Provider: m.Name(), To: to, Err: errors.New("simulated failure")}
	}

	sid := "SM" + uuid.NewString()
	m.sent = append(m.sent, SentMessage{SID: sid, To: to, From: from, Body: body})

	logger.Info("Mock SMS sent",
		zap.String("sid", sid),
		zap.String("to", to),
		zap.String("from", from),
		zap.Int("body_length", len(body)),
	)
	return sid, nil
}

// Sent returns a copy of every successful send
func (m *MockSender) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// Reset clears recorded sends and failures
func (m *MockSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.fail = make(map[string]bool)
}
