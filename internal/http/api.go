package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mdd-forum/internal/repository"
	"mdd-forum/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	topics     service.TopicService
	posts      service.PostService
	tokens     service.TokenService
	corsOrigin string
	logger     *logrus.Logger
}

func NewHandler(users service.UserService, topics service.TopicService, posts service.PostService, tokens service.TokenService, corsOrigin string, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:      users,
		topics:     topics,
		posts:      posts,
		tokens:     tokens,
		corsOrigin: corsOrigin,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), corsMiddleware(h.corsOrigin))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
	}

	protected := api.Group("")
	protected.Use(h.requireAuth())
	{
		protected.GET("/auth/me", h.me)
		protected.PUT("/auth/me", h.updateMe)

		protected.GET("/topics", h.listTopics)
		protected.GET("/topics/subscriptions", h.listSubscriptions)
		protected.GET("/topics/:id", h.getTopic)
		protected.POST("/topics/:id/subscribe", h.subscribe)
		protected.DELETE("/topics/:id/subscribe", h.unsubscribe)

		protected.GET("/posts", h.listPosts)
		protected.GET("/posts/topic/:topicId", h.listPostsByTopic)
		protected.GET("/posts/:id", h.getPost)
		protected.POST("/posts", h.createPost)

		protected.GET("/comments", h.listComments)
		protected.POST("/comments", h.createComment)
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

const requestIDHeader = "X-Request-ID"

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		})
		if uid, ok := c.Get(contextUserID); ok {
			entry = entry.WithField("user_id", uid)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

// writeError maps service errors onto HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, service.ErrAlreadySubscribed),
		errors.Is(err, service.ErrNotSubscribed):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.WithField("path", c.Request.URL.Path).Errorf("internal error: %v", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
