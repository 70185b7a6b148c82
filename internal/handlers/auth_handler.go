package handlers

import (
	"net/http"

	"github.com/leemorgale/sms-chat/internal/config"
	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"github.com/leemorgale/sms-chat/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles phone verification and session requests
type AuthHandler struct {
	config      *config.Config
	otpService  OTPServiceInterface
	userService UserServiceInterface
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config, otpService OTPServiceInterface, userService UserServiceInterface) *AuthHandler {
	return &AuthHandler{
		config:      cfg,
		otpService:  otpService,
		userService: userService,
	}
}

// SendOTP texts a verification code (POST /api/users/send-otp)
func (h *AuthHandler) SendOTP(c *gin.Context) {
	logger.Info("Send OTP endpoint called")

	var req models.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid send OTP request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.otpService.SendOTP(c.Request.Context(), req.PhoneNumber); err != nil {
		respondError(c, err, "Failed to send OTP")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// Register creates an account from a verified code (POST /api/users/register)
func (h *AuthHandler) Register(c *gin.Context) {
	logger.Info("Register with OTP endpoint called")

	var req models.RegisterWithOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.otpService.Register(c.Request.Context(), req.PhoneNumber, req.Name, req.OTPCode)
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login signs in an existing account (POST /api/users/login)
func (h *AuthHandler) Login(c *gin.Context) {
	logger.Info("Login with OTP endpoint called")

	var req models.LoginWithOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.otpService.Login(c.Request.Context(), req.PhoneNumber, req.OTPCode)
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := middleware.GenerateToken(user.ID, user.PhoneNumber, h.config)
	if err != nil {
		logger.Error("Failed to generate token", zap.String("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(status, models.AuthResponse{User: user, Token: token})
}

// Me returns the authenticated user and their groups (GET /api/me)
func (h *AuthHandler) Me(c *gin.Context) {
	logger.Info("Me endpoint called")

	userID := c.GetString("userID")
	if userID == "" {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve user")
		return
	}

	groups, err := h.userService.GetUserGroups(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve groups")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"groups": groups,
	})
}
