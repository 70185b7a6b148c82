package handlers

import (
	"context"

	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/internal/services"
)

// UserServiceInterface defines the contract for user service operations
// This interface is used for dependency injection and testing
type UserServiceInterface interface {
	CreateUser(ctx context.Context, name, phoneNumber string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phoneNumber string) (*models.User, error)
	GetUserGroups(ctx context.Context, userID string) ([]*models.Group, error)
}

// OTPServiceInterface covers phone-ownership verification
type OTPServiceInterface interface {
	SendOTP(ctx context.Context, phoneNumber string) error
	Register(ctx context.Context, phoneNumber, name, code string) (*models.User, error)
	Login(ctx context.Context, phoneNumber, code string) (*models.User, error)
}

// GroupServiceInterface defines the contract for group service operations
// This interface is used for dependency injection and testing
type GroupServiceInterface interface {
	CreateGroup(ctx context.Context, name string) (*models.Group, error)
	ListGroups(ctx context.Context, search string) ([]*models.Group, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	AssignNumber(ctx context.Context, groupID string) (*models.Group, error)
	ListMembers(ctx context.Context, groupID string) ([]*models.User, error)
	JoinGroup(ctx context.Context, groupID, userID string) (*models.Group, *models.User, error)
	LeaveGroup(ctx context.Context, groupID, userID string) (*models.Group, *models.User, error)
	ListMessages(ctx context.Context, groupID string) ([]*models.Message, error)
	SendMessage(ctx context.Context, groupID, userID, content string) (*models.Message, services.DeliveryReport, error)
}

// PhonePoolServiceInterface is the admin view of the number pool
type PhonePoolServiceInterface interface {
	RegisterNumber(ctx context.Context, number string, providerSID *string) (*models.PhoneNumber, error)
	ListNumbers(ctx context.Context) ([]*models.PhoneNumber, error)
	ListAvailable(ctx context.Context) ([]*models.PhoneNumber, error)
	GetNumber(ctx context.Context, id string) (*models.PhoneNumber, error)
	SetStatus(ctx context.Context, id, status string) (*models.PhoneNumber, error)
	DeleteNumber(ctx context.Context, id string) error
}

// InboundRouterInterface routes provider webhook payloads
type InboundRouterInterface interface {
	Route(ctx context.Context, sms services.InboundSMS) (*services.RouteResult, error)
}
