package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/leemorgale/sms-chat/internal/command"
	"github.com/leemorgale/sms-chat/internal/db"
	"github.com/leemorgale/sms-chat/internal/events"
	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"go.uber.org/zap"
)

// Outcome is the terminal state of routing one inbound SMS
type Outcome string

const (
	OutcomeDelivered                Outcome = "delivered"
	OutcomeUnknownSender            Outcome = "unknown_sender"
	OutcomeNotAMember               Outcome = "not_a_member"
	OutcomeGroupNotFoundOrNotMember Outcome = "group_not_found_or_not_member"
	OutcomeNoGroups                 Outcome = "no_groups"
	OutcomeAmbiguousGroup           Outcome = "ambiguous_group"
	OutcomeMessageTooLong           Outcome = "message_too_long"
	OutcomeEmptyMessage             Outcome = "empty_message"
)

// Replies sent back to the webhook caller
const (
	replyUnknownSender    = "User not registered"
	replyNotAMember       = "You are not a member of the '%s' group"
	replyGroupNotFound    = "Group '%s' not found or you are not a member"
	replyNoGroups         = "You are not a member of any group"
	replyAmbiguousGroup   = `Multiple groups detected. Prefix message with @"Group Name" to specify destination.`
	replyMessageTooLong   = "Message too long (max %d characters)"
	replyEmptyMessage     = "Message is empty"
	replyMessageDelivered = "Message sent to %s group"
)

// InboundSMS is a message received from the provider webhook
type InboundSMS struct {
	From string
	To   string
	Body string
}

// RouteResult describes what happened to an inbound SMS
type RouteResult struct {
	Outcome Outcome
	Reply   string
	Group   *models.Group
	Message *models.Message
	Report  DeliveryReport
}

// InboundRouter resolves the target group of an inbound SMS and delivers it
type InboundRouter struct {
	users  db.UserRepository
	groups db.GroupRepository
	phones db.PhoneRepository
	dispatcher
}

// NewInboundRouter creates a new InboundRouter
func NewInboundRouter(
	users db.UserRepository,
	groups db.GroupRepository,
	phones db.PhoneRepository,
	messages db.MessageRepository,
	fanout *FanoutService,
	publisher events.Publisher,
) *InboundRouter {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &InboundRouter{
		users:  users,
		groups: groups,
		phones: phones,
		dispatcher: dispatcher{
			messages:  messages,
			fanout:    fanout,
			publisher: publisher,
		},
	}
}

// Route resolves and delivers one inbound SMS. Business outcomes are
// reported in the result; the error is reserved for storage failures.
func (r *InboundRouter) Route(ctx context.Context, sms InboundSMS) (*RouteResult, error) {
	result, err := r.route(ctx, sms)
	if err != nil {
		logger.Error("Failed to route inbound SMS", zap.String("from", sms.From), zap.String("to", sms.To), zap.Error(err))
		return nil, err
	}

	routeOutcomes.WithLabelValues(string(result.Outcome)).Inc()

	fields := []zap.Field{
		zap.String("outcome", string(result.Outcome)),
		zap.String("from", sms.From),
		zap.String("to", sms.To),
	}
	if result.Group != nil {
		fields = append(fields, zap.String("group_id", result.Group.ID))
	}
	logger.Info("Inbound SMS routed", fields...)

	return result, nil
}

func (r *InboundRouter) route(ctx context.Context, sms InboundSMS) (*RouteResult, error) {
	from := strings.TrimSpace(sms.From)
	to := strings.TrimSpace(sms.To)

	sender, err := r.users.GetByPhoneNumber(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sender: %w", err)
	}
	if sender == nil {
		return outcome(OutcomeUnknownSender, replyUnknownSender), nil
	}

	// A bound destination number fixes the group; the body is not parsed
	group, err := r.groupForNumber(ctx, to)
	if err != nil {
		return nil, err
	}
	if group != nil {
		member, err := r.groups.IsMember(ctx, group.ID, sender.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !member {
			res := outcome(OutcomeNotAMember, fmt.Sprintf(replyNotAMember, group.Name))
			res.Group = group
			return res, nil
		}
		return r.deliver(ctx, group, sender, sms.Body)
	}

	memberships, err := r.groups.ListByUser(ctx, sender.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender groups: %w", err)
	}

	parsed := command.Parse(sms.Body)
	if parsed.HasGroup {
		for _, g := range memberships {
			if g.NameMatches(parsed.GroupName) {
				return r.deliver(ctx, g, sender, parsed.Body)
			}
		}
		return outcome(OutcomeGroupNotFoundOrNotMember, fmt.Sprintf(replyGroupNotFound, parsed.GroupName)), nil
	}

	switch len(memberships) {
	case 0:
		return outcome(OutcomeNoGroups, replyNoGroups), nil
	case 1:
		return r.deliver(ctx, memberships[0], sender, sms.Body)
	default:
		return outcome(OutcomeAmbiguousGroup, replyAmbiguousGroup), nil
	}
}

// groupForNumber returns the group bound to a pool number, or nil
func (r *InboundRouter) groupForNumber(ctx context.Context, number string) (*models.Group, error) {
	if number == "" {
		return nil, nil
	}

	phone, err := r.phones.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination number: %w", err)
	}
	if phone == nil || !phone.IsBound() {
		return nil, nil
	}

	group, err := r.groups.GetByID(ctx, *phone.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bound group: %w", err)
	}
	return group, nil
}

func (r *InboundRouter) deliver(ctx context.Context, group *models.Group, sender *models.User, content string) (*RouteResult, error) {
	if models.ContentBlank(content) {
		res := outcome(OutcomeEmptyMessage, replyEmptyMessage)
		res.Group = group
		return res, nil
	}
	if !models.ContentLengthValid(content) {
		res := outcome(OutcomeMessageTooLong, fmt.Sprintf(replyMessageTooLong, models.MaxMessageLength))
		res.Group = group
		return res, nil
	}

	message, report, err := r.post(ctx, group, sender, content, SourceSMS)
	if err != nil {
		return nil, err
	}

	return &RouteResult{
		Outcome: OutcomeDelivered,
		Reply:   fmt.Sprintf(replyMessageDelivered, group.Name),
		Group:   group,
		Message: message,
		Report:  report,
	}, nil
}

func outcome(o Outcome, reply string) *RouteResult {
	return &RouteResult{Outcome: o, Reply: reply}
}
