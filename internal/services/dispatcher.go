package services

import (
	"context"
	"fmt"

	"github.com/leemorgale/sms-chat/internal/db"
	"github.com/leemorgale/sms-chat/internal/events"
	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"go.uber.org/zap"
)

// Message sources recorded on published events
const (
	SourceSMS = "sms"
	SourceWeb = "web"
)

// dispatcher stores a group message, announces it and fans it out.
// Storage is not rolled back when delivery fails.
type dispatcher struct {
	messages  db.MessageRepository
	fanout    *FanoutService
	publisher events.Publisher
}

func (d *dispatcher) post(ctx context.Context, group *models.Group, author *models.User, content, source string) (*models.Message, DeliveryReport, error) {
	message := models.NewMessage(content, author.ID, group.ID)
	if err := d.messages.Create(ctx, message); err != nil {
		return nil, DeliveryReport{}, fmt.Errorf("failed to store message: %w", err)
	}
	name := author.Name
	message.UserName = &name

	// Stored messages are announced and delivered even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	evt := events.MessageCreated{
		MessageID: message.ID,
		GroupID:   group.ID,
		GroupName: group.Name,
		UserID:    author.ID,
		Source:    source,
		CreatedAt: message.CreatedAt,
	}
	if err := d.publisher.PublishMessageCreated(ctx, evt); err != nil {
		logger.Warn("Failed to publish message event", zap.String("message_id", message.ID), zap.Error(err))
	}

	report := d.fanout.Deliver(ctx, group, author, content)
	return message, report, nil
}
