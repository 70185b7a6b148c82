package handlers

import (
	"errors"
	"net/http"

	"github.com/leemorgale/sms-chat/internal/services"
	"github.com/leemorgale/sms-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a service error kind to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondError writes err as a JSON error body. Unclassified errors are
// logged and replaced with fallback so driver details never leak.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": fallback})
		return
	}

	var svcErr *services.ServiceError
	msg := err.Error()
	if errors.As(err, &svcErr) {
		msg = svcErr.Message
	}
	logger.Warn("Request rejected",
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.String("reason", msg),
	)
	c.JSON(status, gin.H{"error": msg})
}
