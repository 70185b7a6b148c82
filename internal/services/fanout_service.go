package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/leemorgale/sms-chat/internal/config"
	"github.com/leemorgale/sms-chat/internal/db"
	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/internal/transport"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const welcomeTemplate = "Welcome to the '%s' chat! Reply to this number to send messages to the group."

// DeliveryReport summarizes one fanout
type DeliveryReport struct {
	Attempted int `json:"attempted"`
	Failed    int `json:"failed"`
}

// FanoutService sends group messages to every member but the author
type FanoutService struct {
	groups      db.GroupRepository
	sender      transport.Sender
	defaultFrom string
	concurrency int
}

// NewFanoutService creates a FanoutService sending through sender
func NewFanoutService(groups db.GroupRepository, sender transport.Sender, cfg config.TransportConfig, concurrency int) *FanoutService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &FanoutService{
		groups:      groups,
		sender:      sender,
		defaultFrom: cfg.DefaultFrom,
		concurrency: concurrency,
	}
}

// senderFor picks the group's bound number, falling back to the default
func (s *FanoutService) senderFor(group *models.Group) string {
	if group.HasBoundNumber() {
		return *group.PhoneNumber
	}
	return s.defaultFrom
}

// Deliver sends content to the group's members except author.
// Per-recipient failures are logged together and never returned.
// Sends outlive the caller's cancellation: the message is already stored.
func (s *FanoutService) Deliver(ctx context.Context, group *models.Group, author *models.User, content string) DeliveryReport {
	ctx = context.WithoutCancel(ctx)

	members, err := s.groups.ListMembers(ctx, group.ID)
	if err != nil {
		logger.Error("Failed to load group members for fanout", zap.String("group_id", group.ID), zap.Error(err))
		return DeliveryReport{}
	}

	from := s.senderFor(group)
	body := models.FormatGroupSMS(group.Name, author.Name, content)

	var (
		g      errgroup.Group
		mu     sync.Mutex
		errs   error
		report DeliveryReport
	)
	g.SetLimit(s.concurrency)

	for _, member := range members {
		if member.ID == author.ID {
			continue
		}
		report.Attempted++

		to := member.PhoneNumber
		g.Go(func() error {
			if _, err := s.sender.Send(ctx, to, from, body); err != nil {
				fanoutSends.WithLabelValues("failure").Inc()
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return nil
			}
			fanoutSends.WithLabelValues("success").Inc()
			return nil
		})
	}
	_ = g.Wait()

	report.Failed = len(multierr.Errors(errs))
	if errs != nil {
		logger.Error("Group message delivery failed for some recipients",
			zap.String("group_id", group.ID),
			zap.Int("attempted", report.Attempted),
			zap.Int("failed", report.Failed),
			zap.Error(errs),
		)
	}

	logger.Info("Group message fanned out",
		zap.String("group_id", group.ID),
		zap.String("from", from),
		zap.Int("attempted", report.Attempted),
		zap.Int("failed", report.Failed),
	)
	return report
}

// SendWelcome texts a new member from the group's number
func (s *FanoutService) SendWelcome(ctx context.Context, group *models.Group, user *models.User) {
	body := fmt.Sprintf(welcomeTemplate, group.Name)
	if _, err := s.sender.Send(context.WithoutCancel(ctx), user.PhoneNumber, s.senderFor(group), body); err != nil {
		logger.Warn("Failed to send welcome SMS",
			zap.String("group_id", group.ID),
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}

// SendDirect texts one number from the default outbound number
func (s *FanoutService) SendDirect(ctx context.Context, to, body string) error {
	_, err := s.sender.Send(ctx, to, s.defaultFrom, body)
	return err
}
