package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/leemorgale/sms-chat/internal/db"
	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"go.uber.org/zap"
)

var validate = validator.New()

// validatePhone rejects anything that is not an E.164 number
func validatePhone(number string) error {
	if err := validate.Var(number, "required,e164"); err != nil {
		return validationError("Invalid phone number %q: must be E.164 (e.g. +15551234567)", number)
	}
	return nil
}

// PhonePoolService manages the provider numbers that groups text from
type PhonePoolService struct {
	repo db.PhoneRepository
}

// NewPhonePoolService creates a new PhonePoolService instance
func NewPhonePoolService(repo db.PhoneRepository) *PhonePoolService {
	return &PhonePoolService{repo: repo}
}

// RegisterNumber adds a number to the pool as AVAILABLE
func (s *PhonePoolService) RegisterNumber(ctx context.Context, number string, providerSID *string) (*models.PhoneNumber, error) {
	number = strings.TrimSpace(number)
	if err := validatePhone(number); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateNumber
	}

	phone := models.NewPhoneNumber(number, providerSID)
	if err := s.repo.Create(ctx, phone); err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to register phone number: %w", err)
	}

	logger.Info("Phone number registered", zap.String("phone_id", phone.ID), zap.String("number", phone.PhoneNumber))
	return phone, nil
}

// ListNumbers returns every pool number
func (s *PhonePoolService) ListNumbers(ctx context.Context) ([]*models.PhoneNumber, error) {
	return s.repo.List(ctx)
}

// ListAvailable returns numbers that can be assigned, oldest first
func (s *PhonePoolService) ListAvailable(ctx context.Context) ([]*models.PhoneNumber, error) {
	return s.repo.ListByStatus(ctx, models.PhoneStatusAvailable)
}

// GetNumber retrieves a pool number by ID
func (s *PhonePoolService) GetNumber(ctx context.Context, id string) (*models.PhoneNumber, error) {
	if id == "" {
		return nil, ErrPhoneNotFound
	}

	phone, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get phone number: %w", err)
	}
	if phone == nil {
		return nil, ErrPhoneNotFound
	}
	return phone, nil
}

// LookupByNumber finds a pool entry by its E.164 value; nil when absent
func (s *PhonePoolService) LookupByNumber(ctx context.Context, number string) (*models.PhoneNumber, error) {
	return s.repo.GetByNumber(ctx, strings.TrimSpace(number))
}

// AssignToGroup claims the oldest AVAILABLE number for the group.
// An empty pool yields (nil, nil).
func (s *PhonePoolService) AssignToGroup(ctx context.Context, groupID string) (*models.PhoneNumber, error) {
	phone, err := s.repo.ClaimAvailable(ctx, groupID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, db.ErrUniqueViolation) {
			return nil, ErrGroupAlreadyHasNumber
		}
		poolAssignments.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to assign phone number: %w", err)
	}

	if phone == nil {
		poolAssignments.WithLabelValues("empty").Inc()
		logger.Warn("No available phone numbers in pool", zap.String("group_id", groupID))
		return nil, nil
	}

	poolAssignments.WithLabelValues("assigned").Inc()
	logger.Info("Phone number assigned to group",
		zap.String("group_id", groupID),
		zap.String("phone_id", phone.ID),
		zap.String("number", phone.PhoneNumber),
	)
	return phone, nil
}

// Release returns a number to the pool, unbinding its group
func (s *PhonePoolService) Release(ctx context.Context, id string) (*models.PhoneNumber, error) {
	return s.SetStatus(ctx, id, string(models.PhoneStatusAvailable))
}

// SetStatus decodes status and applies it. ASSIGNED is only accepted for a
// number that is already assigned; new bindings go through AssignToGroup.
func (s *PhonePoolService) SetStatus(ctx context.Context, id, status string) (*models.PhoneNumber, error) {
	newStatus, err := models.ParsePhoneStatus(status)
	if err != nil {
		return nil, validationError("Invalid status %q: must be one of AVAILABLE, ASSIGNED, INACTIVE", status)
	}

	phone, err := s.GetNumber(ctx, id)
	if err != nil {
		return nil, err
	}

	if newStatus == models.PhoneStatusAssigned {
		if phone.Status != models.PhoneStatusAssigned {
			return nil, ErrInvalidState
		}
		return phone, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrPhoneNotFound
		}
		return nil, fmt.Errorf("failed to update phone number status: %w", err)
	}

	if phone.IsBound() {
		logger.Warn("Phone number unbound from group",
			zap.String("phone_id", id),
			zap.String("group_id", *phone.GroupID),
			zap.String("status", string(newStatus)),
		)
	}

	return s.GetNumber(ctx, id)
}

// DeleteNumber removes a number that is not ASSIGNED
func (s *PhonePoolService) DeleteNumber(ctx context.Context, id string) error {
	phone, err := s.GetNumber(ctx, id)
	if err != nil {
		return err
	}
	if phone.Status == models.PhoneStatusAssigned {
		return ErrInvalidState
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		// Claimed between the read and the delete
		if errors.Is(err, db.ErrNotFound) {
			return ErrInvalidState
		}
		return fmt.Errorf("failed to delete phone number: %w", err)
	}

	logger.Info("Phone number deleted", zap.String("phone_id", id))
	return nil
}
