package handlers

import (
	"net/http"

	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler manages the phone number pool (/api/admin)
type AdminHandler struct {
	pool   PhonePoolServiceInterface
	groups GroupServiceInterface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(pool PhonePoolServiceInterface, groups GroupServiceInterface) *AdminHandler {
	return &AdminHandler{
		pool:   pool,
		groups: groups,
	}
}

// updateStatusRequest is accepted as JSON or as the status query parameter
type updateStatusRequest struct {
	Status string `json:"status" form:"status"`
}

// RegisterPhoneNumber adds a number to the pool (POST /api/admin/phone-numbers)
func (h *AdminHandler) RegisterPhoneNumber(c *gin.Context) {
	logger.Info("Register phone number endpoint called")

	var req models.RegisterPhoneNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid register phone number request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	phone, err := h.pool.RegisterNumber(c.Request.Context(), req.PhoneNumber, req.ProviderSID)
	if err != nil {
		respondError(c, err, "Failed to register phone number")
		return
	}

	logger.Info("Phone number registered", zap.String("phone_id", phone.ID))
	c.JSON(http.StatusCreated, phone)
}

// ListPhoneNumbers returns the whole pool (GET /api/admin/phone-numbers)
func (h *AdminHandler) ListPhoneNumbers(c *gin.Context) {
	logger.Info("List phone numbers endpoint called")

	phones, err := h.pool.ListNumbers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list phone numbers")
		return
	}
	c.JSON(http.StatusOK, phones)
}

// ListAvailablePhoneNumbers returns claimable numbers (GET /api/admin/phone-numbers/available)
func (h *AdminHandler) ListAvailablePhoneNumbers(c *gin.Context) {
	logger.Info("List available phone numbers endpoint called")

	phones, err := h.pool.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list phone numbers")
		return
	}
	c.JSON(http.StatusOK, phones)
}

// GetPhoneNumber returns one pool entry (GET /api/admin/phone-numbers/:id)
func (h *AdminHandler) GetPhoneNumber(c *gin.Context) {
	logger.Info("Get phone number endpoint called")

	phone, err := h.pool.GetNumber(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve phone number")
		return
	}
	c.JSON(http.StatusOK, phone)
}

// UpdatePhoneStatus changes a number's status (PUT /api/admin/phone-numbers/:id/status)
func (h *AdminHandler) UpdatePhoneStatus(c *gin.Context) {
	logger.Info("Update phone status endpoint called")

	var req updateStatusRequest
	req.Status = c.Query("status")
	if req.Status == "" && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Invalid update status request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}
	if req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	phone, err := h.pool.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "Failed to update phone number status")
		return
	}

	logger.Info("Phone number status updated",
		zap.String("phone_id", phone.ID),
		zap.String("status", string(phone.Status)),
	)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Phone number status updated to " + string(phone.Status),
		"phone_number": phone,
	})
}

// DeletePhoneNumber removes an unassigned number (DELETE /api/admin/phone-numbers/:id)
func (h *AdminHandler) DeletePhoneNumber(c *gin.Context) {
	logger.Info("Delete phone number endpoint called")

	if err := h.pool.DeleteNumber(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete phone number")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Phone number deleted"})
}

// AssignGroupNumber binds a pool number to a group without one
// (POST /api/admin/groups/:id/assign-number)
func (h *AdminHandler) AssignGroupNumber(c *gin.Context) {
	logger.Info("Assign group number endpoint called")

	group, err := h.groups.AssignNumber(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to assign phone number")
		return
	}

	logger.Info("Phone number assigned to group", zap.String("group_id", group.ID))
	c.JSON(http.StatusOK, group)
}
