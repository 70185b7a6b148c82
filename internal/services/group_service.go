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

// GroupService provides business logic for groups and membership
type GroupService struct {
	groups       db.GroupRepository
	users        db.UserRepository
	pool         *PhonePoolService
	historyLimit int
	dispatcher
}

// NewGroupService creates a new GroupService instance
func NewGroupService(
	groups db.GroupRepository,
	users db.UserRepository,
	messages db.MessageRepository,
	pool *PhonePoolService,
	fanout *FanoutService,
	publisher events.Publisher,
	historyLimit int,
) *GroupService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &GroupService{
		groups:       groups,
		users:        users,
		pool:         pool,
		historyLimit: historyLimit,
		dispatcher: dispatcher{
			messages:  messages,
			fanout:    fanout,
			publisher: publisher,
		},
	}
}

// CreateGroup creates a group and binds the oldest available pool number.
// An empty pool or a failed claim leaves the group without a number; an
// admin can bind one later with AssignNumber.
func (s *GroupService) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	group := models.NewGroup(name)
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	if _, err := s.pool.AssignToGroup(ctx, group.ID); err != nil {
		logger.Error("Group created without a phone number",
			zap.String("group_id", group.ID),
			zap.Error(err),
		)
	}

	logger.Info("Group created", zap.String("group_id", group.ID), zap.String("name", group.Name))
	return s.GetGroup(ctx, group.ID)
}

// ListGroups returns groups whose names contain search, or all of them
func (s *GroupService) ListGroups(ctx context.Context, search string) ([]*models.Group, error) {
	return s.groups.List(ctx, search)
}

// GetGroup retrieves a group with its bound number and member count
func (s *GroupService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	if id == "" {
		return nil, ErrGroupNotFound
	}

	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// AssignNumber binds a pool number to a group that has none
func (s *GroupService) AssignNumber(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.HasBoundNumber() {
		return nil, ErrGroupAlreadyHasNumber
	}

	phone, err := s.pool.AssignToGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if phone == nil {
		return nil, ErrNoAvailableNumbers
	}

	return s.GetGroup(ctx, groupID)
}

// ListMembers returns the group's members in join order
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]*models.User, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groups.ListMembers(ctx, groupID)
}

func (s *GroupService) loadGroupAndUser(ctx context.Context, groupID, userID string) (*models.Group, *models.User, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	if userID == "" {
		return nil, nil, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	return group, user, nil
}

// JoinGroup adds the user to the group, records a join message and texts a welcome
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID string) (*models.Group, *models.User, error) {
	group, user, err := s.loadGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return nil, nil, err
	}

	added, err := s.groups.AddMember(ctx, groupID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to join group: %w", err)
	}
	if !added {
		return nil, nil, ErrAlreadyMember
	}

	joined := models.NewMessage(fmt.Sprintf("%s joined the group!", user.Name), user.ID, group.ID)
	if err := s.messages.Create(ctx, joined); err != nil {
		logger.Warn("Failed to record join message", zap.String("group_id", groupID), zap.Error(err))
	}

	s.fanout.SendWelcome(ctx, group, user)

	logger.Info("User joined group", zap.String("group_id", groupID), zap.String("user_id", userID))
	return group, user, nil
}

// LeaveGroup removes the user from the group
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID string) (*models.Group, *models.User, error) {
	group, user, err := s.loadGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return nil, nil, err
	}

	removed, err := s.groups.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to leave group: %w", err)
	}
	if !removed {
		return nil, nil, ErrNotMember
	}

	logger.Info("User left group", zap.String("group_id", groupID), zap.String("user_id", userID))
	return group, user, nil
}

// ListMessages returns the newest messages of a group
func (s *GroupService) ListMessages(ctx context.Context, groupID string) ([]*models.Message, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.messages.ListByGroup(ctx, groupID, s.historyLimit)
}

// SendMessage posts a message from the web client and fans it out like an SMS
func (s *GroupService) SendMessage(ctx context.Context, groupID, userID, content string) (*models.Message, DeliveryReport, error) {
	if models.ContentBlank(content) || !models.ContentLengthValid(content) {
		return nil, DeliveryReport{}, validationError("Message content must be between 1 and %d characters", models.MaxMessageLength)
	}

	group, user, err := s.loadGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return nil, DeliveryReport{}, err
	}

	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, DeliveryReport{}, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, DeliveryReport{}, ErrMustBeMember
	}

	return s.post(ctx, group, user, content, SourceWeb)
}
