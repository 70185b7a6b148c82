package handlers

import (
	"net/http"

	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles user management requests
type UserHandler struct {
	userService UserServiceInterface
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUser handles creating a user without verification (POST /api/users)
func (h *UserHandler) CreateUser(c *gin.Context) {
	logger.Info("Create user endpoint called")

	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid create user request", zap.Error(err))
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
			return
		}
		if req.PhoneNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number is required"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req.Name, req.PhoneNumber)
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}

	logger.Info("User created successfully", zap.String("user_id", user.ID))
	c.JSON(http.StatusCreated, user)
}

// ListUsers handles listing all users (GET /api/users)
func (h *UserHandler) ListUsers(c *gin.Context) {
	logger.Info("List users endpoint called")

	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles retrieving a user by ID (GET /api/users/:id)
func (h *UserHandler) GetUser(c *gin.Context) {
	logger.Info("Get user endpoint called")

	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserByPhone handles retrieving a user by phone number (GET /api/users/phone/:phone_number)
func (h *UserHandler) GetUserByPhone(c *gin.Context) {
	logger.Info("Get user by phone endpoint called")

	user, err := h.userService.GetUserByPhone(c.Request.Context(), c.Param("phone_number"))
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserGroups handles listing a user's groups (GET /api/users/:id/groups)
func (h *UserHandler) GetUserGroups(c *gin.Context) {
	logger.Info("Get user groups endpoint called")

	groups, err := h.userService.GetUserGroups(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve groups")
		return
	}
	c.JSON(http.StatusOK, groups)
}
