// Package transport delivers outbound SMS through a mock or a real provider.
package transport

import (
	"context"
	"fmt"

	"github.com/leemorgale/sms-chat/internal/config"
)

// Sender delivers one SMS and returns the provider's message id
type Sender interface {
	Send(ctx context.Context, to, from, body string) (string, error)
	Name() string
}

// Error describes a failed send to one recipient
type Error struct {
	Provider string
	To       string
	Code     int
	Err      error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s send to %s failed (code %d): %v", e.Provider, e.To, e.Code, e.Err)
	}
	return fmt.Sprintf("%s send to %s failed: %v", e.Provider, e.To, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New selects the transport described by cfg
func New(cfg config.TransportConfig) (Sender, error) {
	if cfg.Mock {
		return NewMockSender(), nil
	}
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("twilio transport requires account SID and auth token")
	}
	return NewTwilioSender(cfg.AccountSID, cfg.AuthToken, cfg.Timeout), nil
}
