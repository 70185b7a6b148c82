package handlers

import (
	"context"

	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/internal/services"

	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of UserServiceInterface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, name, phoneNumber string) (*models.User, error) {
	args := m.Called(ctx, name, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetUserByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetUserGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Group), args.Error(1)
}

// MockOTPService is a mock implementation of OTPServiceInterface
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) SendOTP(ctx context.Context, phoneNumber string) error {
	args := m.Called(ctx, phoneNumber)
	return args.Error(0)
}

func (m *MockOTPService) Register(ctx context.Context, phoneNumber, name, code string) (*models.User, error) {
	args := m.Called(ctx, phoneNumber, name, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockOTPService) Login(ctx context.Context, phoneNumber, code string) (*models.User, error) {
	args := m.Called(ctx, phoneNumber, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockGroupService is a mock implementation of GroupServiceInterface
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupService) ListGroups(ctx context.Context, search string) ([]*models.Group, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Group), args.Error(1)
}

func (m *MockGroupService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupService) AssignNumber(ctx context.Context, groupID string) (*models.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupService) ListMembers(ctx context.Context, groupID string) ([]*models.User, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockGroupService) JoinGroup(ctx context.Context, groupID, userID string) (*models.Group, *models.User, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Group), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockGroupService) LeaveGroup(ctx context.Context, groupID, userID string) (*models.Group, *models.User, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Group), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockGroupService) ListMessages(ctx context.Context, groupID string) ([]*models.Message, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}

func (m *MockGroupService) SendMessage(ctx context.Context, groupID, userID, content string) (*models.Message, services.DeliveryReport, error) {
	args := m.Called(ctx, groupID, userID, content)
	if args.Get(0) == nil {
		return nil, services.DeliveryReport{}, args.Error(2)
	}
	return args.Get(0).(*models.Message), args.Get(1).(services.DeliveryReport), args.Error(2)
}

// MockPhonePoolService is a mock implementation of PhonePoolServiceInterface
type MockPhonePoolService struct {
	mock.Mock
}

func (m *MockPhonePoolService) RegisterNumber(ctx context.Context, number string, providerSID *string) (*models.PhoneNumber, error) {
	args := m.Called(ctx, number, providerSID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PhoneNumber), args.Error(1)
}

func (m *MockPhonePoolService) ListNumbers(ctx context.Context) ([]*models.PhoneNumber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PhoneNumber), args.Error(1)
}

func (m *MockPhonePoolService) ListAvailable(ctx context.Context) ([]*models.PhoneNumber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PhoneNumber), args.Error(1)
}

func (m *MockPhonePoolService) GetNumber(ctx context.Context, id string) (*models.PhoneNumber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PhoneNumber), args.Error(1)
}

func (m *MockPhonePoolService) SetStatus(ctx context.Context, id, status string) (*models.PhoneNumber, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PhoneNumber), args.Error(1)
}

func (m *MockPhonePoolService) DeleteNumber(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInboundRouter is a mock implementation of InboundRouterInterface
type MockInboundRouter struct {
	mock.Mock
}

func (m *MockInboundRouter) Route(ctx context.Context, sms services.InboundSMS) (*services.RouteResult, error) {
	args := m.Called(ctx, sms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RouteResult), args.Error(1)
}
