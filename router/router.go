package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/leemorgale/sms-chat/internal/config"
	"github.com/leemorgale/sms-chat/internal/handlers"
	"github.com/leemorgale/sms-chat/pkg/logger"
	"github.com/leemorgale/sms-chat/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON and webhook payloads
const maxBodyBytes = 1 << 20

// WebhookPath receives inbound SMS from the provider; it stays reachable
// over plain HTTP when HTTPS is forced
const WebhookPath = "/api/sms/webhook"

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups everything the router dispatches to
type Handlers struct {
	Users  *handlers.UserHandler
	Auth   *handlers.AuthHandler
	Groups *handlers.GroupHandler
	Admin  *handlers.AdminHandler
	SMS    *handlers.SMSHandler
}

type Router struct {
	engine *gin.Engine
	health Pinger
}

func NewRouter(cfg *config.Config, h Handlers, health Pinger) (*Router, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if h.Users == nil || h.Auth == nil || h.Groups == nil || h.Admin == nil || h.SMS == nil {
		return nil, errors.New("all handlers are required")
	}

	r := &Router{
		engine: gin.New(),
		health: health,
	}

	r.engine.HandleMethodNotAllowed = true
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestIDMiddleware())
	r.engine.Use(middleware.AuditLogMiddleware())
	if cfg.Server.ForceHTTPS {
		r.engine.Use(middleware.HTTPSRedirectMiddleware(WebhookPath))
	}
	r.engine.Use(middleware.SecurityHeadersMiddleware())
	r.engine.Use(middleware.CORSMiddleware(cfg.Security.CORSOrigins))
	r.engine.Use(middleware.MetricsMiddleware())
	r.engine.Use(middleware.RequestSizeLimitMiddleware(maxBodyBytes))

	r.engine.GET("/", r.handleRoot)
	r.engine.GET("/health", r.handleHealth)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.engine.NoRoute(r.handleNotFound)
	r.engine.NoMethod(r.handleMethodNotAllowed)

	api := r.engine.Group("/api")

	users := api.Group("/users")
	{
		users.POST("", h.Users.CreateUser)
		users.GET("", h.Users.ListUsers)
		users.POST("/send-otp", h.Auth.SendOTP)
		users.POST("/register", h.Auth.Register)
		users.POST("/login", h.Auth.Login)
		users.GET("/phone/:phone_number", h.Users.GetUserByPhone)
		users.GET("/:id", h.Users.GetUser)
		users.GET("/:id/groups", h.Users.GetUserGroups)
	}

	api.GET("/me", middleware.AuthMiddleware(cfg), h.Auth.Me)

	groups := api.Group("/groups")
	{
		groups.POST("", h.Groups.CreateGroup)
		groups.GET("", h.Groups.ListGroups)
		groups.GET("/:id", h.Groups.GetGroupByID)
		groups.GET("/:id/members", h.Groups.ListMembers)
		groups.POST("/:id/join/:user_id", h.Groups.JoinGroup)
		groups.POST("/:id/leave/:user_id", h.Groups.LeaveGroup)
		groups.GET("/:id/messages", h.Groups.ListMessages)
		groups.POST("/:id/messages", h.Groups.SendMessage)
	}

	r.engine.POST(WebhookPath, h.SMS.Webhook)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyMiddleware(cfg.Admin.KeyHash))
	{
		admin.POST("/phone-numbers", h.Admin.RegisterPhoneNumber)
		admin.GET("/phone-numbers", h.Admin.ListPhoneNumbers)
		admin.GET("/phone-numbers/available", h.Admin.ListAvailablePhoneNumbers)
		admin.GET("/phone-numbers/:id", h.Admin.GetPhoneNumber)
		admin.PUT("/phone-numbers/:id/status", h.Admin.UpdatePhoneStatus)
		admin.DELETE("/phone-numbers/:id", h.Admin.DeletePhoneNumber)
		admin.POST("/groups/:id/assign-number", h.Admin.AssignGroupNumber)
	}

	return r, nil
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}

func (r *Router) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Group SMS Chat API"})
}

func (r *Router) handleHealth(c *gin.Context) {
	if r.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := r.health.Ping(ctx); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) handleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

func (r *Router) handleMethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}
