package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/leemorgale/sms-chat/internal/models"
	"github.com/leemorgale/sms-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GroupHandler handles group and group message requests
type GroupHandler struct {
	groupService GroupServiceInterface
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService GroupServiceInterface) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
	}
}

// CreateGroup handles creating a new group (POST /api/groups).
// A pool number is bound when one is available.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	logger.Info("Create group endpoint called")

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid create group request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err, "Failed to create group")
		return
	}

	logger.Info("Group created successfully",
		zap.String("group_id", group.ID),
		zap.Bool("has_number", group.HasBoundNumber()),
	)
	c.JSON(http.StatusCreated, group)
}

// ListGroups handles listing groups (GET /api/groups?search=)
func (h *GroupHandler) ListGroups(c *gin.Context) {
	logger.Info("List groups endpoint called")

	search := strings.TrimSpace(c.Query("search"))
	groups, err := h.groupService.ListGroups(c.Request.Context(), search)
	if err != nil {
		respondError(c, err, "Failed to list groups")
		return
	}

	logger.Info("Groups retrieved successfully", zap.Int("count", len(groups)))
	c.JSON(http.StatusOK, groups)
}

// GetGroupByID handles retrieving a group by ID (GET /api/groups/:id)
func (h *GroupHandler) GetGroupByID(c *gin.Context) {
	logger.Info("Get group by ID endpoint called")

	group, err := h.groupService.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve group")
		return
	}
	c.JSON(http.StatusOK, group)
}

// ListMembers handles listing the members of a group (GET /api/groups/:id/members)
func (h *GroupHandler) ListMembers(c *gin.Context) {
	logger.Info("List group members endpoint called")

	members, err := h.groupService.ListMembers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list group members")
		return
	}
	c.JSON(http.StatusOK, members)
}

// JoinGroup handles adding a user to a group (POST /api/groups/:id/join/:user_id)
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	logger.Info("Join group endpoint called")

	group, user, err := h.groupService.JoinGroup(c.Request.Context(), c.Param("id"), c.Param("user_id"))
	if err != nil {
		respondError(c, err, "Failed to join group")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %s joined group %s", user.Name, group.Name)})
}

// LeaveGroup handles removing a user from a group (POST /api/groups/:id/leave/:user_id)
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	logger.Info("Leave group endpoint called")

	group, user, err := h.groupService.LeaveGroup(c.Request.Context(), c.Param("id"), c.Param("user_id"))
	if err != nil {
		respondError(c, err, "Failed to leave group")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %s left group %s", user.Name, group.Name)})
}

// ListMessages handles reading recent group history (GET /api/groups/:id/messages)
func (h *GroupHandler) ListMessages(c *gin.Context) {
	logger.Info("List group messages endpoint called")

	messages, err := h.groupService.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage handles posting a message from the web client (POST /api/groups/:id/messages).
// The message is texted to every other member.
func (h *GroupHandler) SendMessage(c *gin.Context) {
	logger.Info("Send group message endpoint called")

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid send message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	message, report, err := h.groupService.SendMessage(c.Request.Context(), c.Param("id"), req.UserID, req.Content)
	if err != nil {
		respondError(c, err, "Failed to send message")
		return
	}

	logger.Info("Group message sent",
		zap.String("message_id", message.ID),
		zap.Int("attempted", report.Attempted),
		zap.Int("failed", report.Failed),
	)
	c.JSON(http.StatusCreated, message)
}
