package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leemorgale/sms-chat/internal/db"
	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"go.uber.org/zap"
)

// MaxNameLength bounds user and group names
const MaxNameLength = 255

// UserService provides business logic for user management
type UserService struct {
	repo   db.UserRepository
	groups db.GroupRepository
}

// NewUserService creates a new UserService instance
func NewUserService(repo db.UserRepository, groups db.GroupRepository) *UserService {
	return &UserService{repo: repo, groups: groups}
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxNameLength {
		return validationError("Name must be between 1 and %d characters", MaxNameLength)
	}
	return nil
}

// CreateUser registers a phone owner; the phone number must be unused
func (s *UserService) CreateUser(ctx context.Context, name, phoneNumber string) (*models.User, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePhone(phoneNumber); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}
	if existing != nil {
		return nil, ErrPhoneRegistered
	}

	user := models.NewUser(name, phoneNumber)
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			return nil, ErrPhoneRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User created", zap.String("user_id", user.ID))
	return user, nil
}

// ListUsers returns every user
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetUserByPhone retrieves a user by E.164 number
func (s *UserService) GetUserByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return nil, ErrUserNotFound
	}

	user, err := s.repo.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetUserGroups lists the user's groups in join order
func (s *UserService) GetUserGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.groups.ListByUser(ctx, userID)
}
