package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupAdminRouter(pool *MockPhonePoolService, groups *MockGroupService) *gin.Engine {
	h := NewAdminHandler(pool, groups)
	r := newTestEngine()
	admin := r.Group("/api/admin")
	admin.POST("/phone-numbers", h.RegisterPhoneNumber)
	admin.GET("/phone-numbers", h.ListPhoneNumbers)
	admin.GET("/phone-numbers/available", h.ListAvailablePhoneNumbers)
	admin.GET("/phone-numbers/:id", h.GetPhoneNumber)
	admin.PUT("/phone-numbers/:id/status", h.UpdatePhoneStatus)
	admin.DELETE("/phone-numbers/:id", h.DeletePhoneNumber)
	admin.POST("/groups/:id/assign-number", h.AssignGroupNumber)
	return r
}

func samplePhone(status models.PhoneStatus) *models.PhoneNumber {
	return &models.PhoneNumber{
		ID:          "phone-1",
		PhoneNumber: "+15552220000",
		Status:      status,
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAdminHandler_RegisterPhoneNumber(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockSetup      func(*MockPhonePoolService)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "registers number",
			body: `{"phone_number":"+15552220000","provider_sid":"PN123"}`,
			mockSetup: func(m *MockPhonePoolService) {
				m.On("RegisterNumber", mock.Anything, "+15552220000", mock.MatchedBy(func(sid *string) bool {
					return sid != nil && *sid == "PN123"
				})).Return(samplePhone(models.PhoneStatusAvailable), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "rejects non e164 number",
			body:           `{"phone_number":"555-1234"}`,
			mockSetup:      func(m *MockPhonePoolService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request format",
		},
		{
			name: "duplicate number",
			body: `{"phone_number":"+15552220000"}`,
			mockSetup: func(m *MockPhonePoolService) {
				m.On("RegisterNumber", mock.Anything, "+15552220000", (*string)(nil)).
					Return(nil, services.ErrDuplicateNumber)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Phone number already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := new(MockPhonePoolService)
			tt.mockSetup(pool)
			r := setupAdminRouter(pool, new(MockGroupService))

			w := performRequest(r, http.MethodPost, "/api/admin/phone-numbers", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeObject(t, w)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, resp["error"])
			} else {
				assert.Equal(t, "AVAILABLE", resp["status"])
			}
			pool.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_ListPhoneNumbers(t *testing.T) {
	pool := new(MockPhonePoolService)
	pool.On("ListNumbers", mock.Anything).Return([]*models.PhoneNumber{
		samplePhone(models.PhoneStatusAvailable),
	}, nil)
	pool.On("ListAvailable", mock.Anything).Return([]*models.PhoneNumber{}, nil)
	r := setupAdminRouter(pool, new(MockGroupService))

	w := performRequest(r, http.MethodGet, "/api/admin/phone-numbers", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	w = performRequest(r, http.MethodGet, "/api/admin/phone-numbers/available", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestAdminHandler_GetPhoneNumber_NotFound(t *testing.T) {
	pool := new(MockPhonePoolService)
	pool.On("GetNumber", mock.Anything, "missing").Return(nil, services.ErrPhoneNotFound)
	r := setupAdminRouter(pool, new(MockGroupService))

	w := performRequest(r, http.MethodGet, "/api/admin/phone-numbers/missing", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Phone number not found", decodeObject(t, w)["error"])
}

func TestAdminHandler_UpdatePhoneStatus(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		mockSetup      func(*MockPhonePoolService)
		expectedStatus int
		expectedKey    string
		expectedValue  string
	}{
		{
			name: "status from query",
			path: "/api/admin/phone-numbers/phone-1/status?status=INACTIVE",
			mockSetup: func(m *MockPhonePoolService) {
				m.On("SetStatus", mock.Anything, "phone-1", "INACTIVE").Return(samplePhone(models.PhoneStatusInactive), nil)
			},
			expectedStatus: http.StatusOK,
			expectedKey:    "message",
			expectedValue:  "Phone number status updated to INACTIVE",
		},
		{
			name: "status from body",
			path: "/api/admin/phone-numbers/phone-1/status",
			body: `{"status":"available"}`,
			mockSetup: func(m *MockPhonePoolService) {
				m.On("SetStatus", mock.Anything, "phone-1", "available").Return(samplePhone(models.PhoneStatusAvailable), nil)
			},
			expectedStatus: http.StatusOK,
			expectedKey:    "message",
			expectedValue:  "Phone number status updated to AVAILABLE",
		},
		{
			name:           "missing status",
			path:           "/api/admin/phone-numbers/phone-1/status",
			mockSetup:      func(m *MockPhonePoolService) {},
			expectedStatus: http.StatusBadRequest,
			expectedKey:    "error",
			expectedValue:  "Status is required",
		},
		{
			name: "invalid status",
			path: "/api/admin/phone-numbers/phone-1/status?status=RETIRED",
			mockSetup: func(m *MockPhonePoolService) {
				m.On("SetStatus", mock.Anything, "phone-1", "RETIRED").
					Return(nil, &services.ServiceError{Kind: services.ErrValidation, Message: "Invalid status"})
			},
			expectedStatus: http.StatusBadRequest,
			expectedKey:    "error",
			expectedValue:  "Invalid status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := new(MockPhonePoolService)
			tt.mockSetup(pool)
			r := setupAdminRouter(pool, new(MockGroupService))

			w := performRequest(r, http.MethodPut, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedValue, decodeObject(t, w)[tt.expectedKey])
			pool.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_DeletePhoneNumber(t *testing.T) {
	pool := new(MockPhonePoolService)
	pool.On("DeleteNumber", mock.Anything, "phone-1").Return(nil)
	pool.On("DeleteNumber", mock.Anything, "phone-2").Return(services.ErrInvalidState)
	r := setupAdminRouter(pool, new(MockGroupService))

	w := performRequest(r, http.MethodDelete, "/api/admin/phone-numbers/phone-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Phone number deleted", decodeObject(t, w)["message"])

	w = performRequest(r, http.MethodDelete, "/api/admin/phone-numbers/phone-2", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_AssignGroupNumber(t *testing.T) {
	groups := new(MockGroupService)
	groups.On("AssignNumber", mock.Anything, "group-1").Return(&models.Group{
		ID:          "group-1",
		Name:        "Family",
		PhoneNumber: strPtr("+15552220000"),
	}, nil)
	groups.On("AssignNumber", mock.Anything, "group-2").Return(nil, services.ErrNoAvailableNumbers)
	r := setupAdminRouter(new(MockPhonePoolService), groups)

	w := performRequest(r, http.MethodPost, "/api/admin/groups/group-1/assign-number", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "+15552220000", decodeObject(t, w)["phone_number"])

	w = performRequest(r, http.MethodPost, "/api/admin/groups/group-2/assign-number", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No available phone numbers in pool", decodeObject(t, w)["error"])
}
