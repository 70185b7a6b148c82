package handlers

import (
	"net/http"
	"strings"

	"github.com/leemorgale/sms-chat/internal/services"
	"github.com/leemorgale/sms-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// webhookRequest is the provider callback payload. Providers post a form;
// JSON is accepted for local testing.
type webhookRequest struct {
	From string `form:"From" json:"From"`
	To   string `form:"To" json:"To"`
	Body string `form:"Body" json:"Body"`
}

// SMSHandler receives inbound SMS from the provider
type SMSHandler struct {
	router InboundRouterInterface
}

// NewSMSHandler creates a new SMS webhook handler
func NewSMSHandler(router InboundRouterInterface) *SMSHandler {
	return &SMSHandler{router: router}
}

// Webhook handles an inbound SMS (POST /api/sms/webhook).
// Every routing outcome answers 200 with the reply text.
func (h *SMSHandler) Webhook(c *gin.Context) {
	logger.Info("SMS webhook endpoint called")

	var req webhookRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Warn("Invalid webhook request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var missing []string
	if strings.TrimSpace(req.From) == "" {
		missing = append(missing, "From")
	}
	if strings.TrimSpace(req.To) == "" {
		missing = append(missing, "To")
	}
	if req.Body == "" {
		missing = append(missing, "Body")
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: " + strings.Join(missing, ", ")})
		return
	}

	result, err := h.router.Route(c.Request.Context(), services.InboundSMS{
		From: req.From,
		To:   req.To,
		Body: req.Body,
	})
	if err != nil {
		respondError(c, err, "Failed to process SMS")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": result.Reply})
}
