// Package events publishes domain events for other services to consume.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leemorgale/sms-chat/pkg/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// MessageCreated is emitted after a group message is stored
type MessageCreated struct {
	MessageID string    `json:"message_id"`
	GroupID   string    `json:"group_id"`
	GroupName string    `json:"group_name"`
	UserID    string    `json:"user_id"`
	Source    string    `json:"source"` // "sms" or "web"
	CreatedAt time.Time `json:"created_at"`
}

// Publisher emits domain events. Publishing is best effort.
type Publisher interface {
	PublishMessageCreated(ctx context.Context, evt MessageCreated) error
	Close() error
}

// NoopPublisher discards events when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) PublishMessageCreated(context.Context, MessageCreated) error { return nil }
func (NoopPublisher) Close() error                                               { return nil }

// natsConn is the part of *nats.Conn used for publishing
type natsConn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// NATSPublisher publishes JSON events on a single subject
type NATSPublisher struct {
	conn    natsConn
	subject string
}

// NewNATSPublisher connects to the broker at url
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("sms-chat"),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: nc, subject: subject}, nil
}

func (p *NATSPublisher) PublishMessageCreated(ctx context.Context, evt MessageCreated) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close flushes pending events and closes the connection
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// New returns a NATS publisher, or a no-op one when url is empty
func New(url, subject string) (Publisher, error) {
	if url == "" {
		return NoopPublisher{}, nil
	}
	return NewNATSPublisher(url, subject)
}
