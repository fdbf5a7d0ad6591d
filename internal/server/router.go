// Package server exposes the planner over a bearer-token protected JSON API.
package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kpessa/yearview/internal/export"
	"github.com/kpessa/yearview/internal/scheduler"
	"github.com/kpessa/yearview/internal/store"
)

const userIDContextKey = "yearview_user_id"

var (
	errMissingTokenManager  = errors.New("token manager dependency required")
	errMissingStoreService  = errors.New("store service dependency required")
	errInvalidAuthorization = errors.New("authorization header missing or invalid")
)

// TokenManager validates bearer tokens into user ids.
type TokenManager interface {
	ValidateToken(token string) (string, error)
}

// Dependencies wires the HTTP surface. Runner may be nil when Google sync
// is disabled; the sync routes then answer 503.
type Dependencies struct {
	TokenManager TokenManager
	Store        *store.Service
	Runner       *scheduler.Runner
	Exporter     *export.Exporter
	Logger       *zap.Logger
}

// NewHTTPHandler builds the gin router with CORS and auth middleware.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.Store == nil {
		return nil, errMissingStoreService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:   deps.TokenManager,
		store:    deps.Store,
		runner:   deps.Runner,
		exporter: deps.Exporter,
		logger:   logger,
	}

	protected := router.Group("/")
	protected.Use(handler.authorizeRequest)

	protected.GET("/events", handler.handleListEvents)
	protected.POST("/events", handler.handleCreateEvent)
	protected.PUT("/events/:id", handler.handleUpdateEvent)
	protected.DELETE("/events/:id", handler.handleDeleteEvent)

	protected.GET("/categories", handler.handleListCategories)
	protected.POST("/categories", handler.handleCreateCategory)
	protected.PUT("/categories/:id", handler.handleUpdateCategory)
	protected.DELETE("/categories/:id", handler.handleDeleteCategory)

	protected.GET("/custom-holidays", handler.handleListCustomHolidays)
	protected.POST("/custom-holidays", handler.handleCreateCustomHoliday)
	protected.DELETE("/custom-holidays/:id", handler.handleDeleteCustomHoliday)
	protected.GET("/holidays/:year", handler.handleHolidayYear)

	protected.GET("/day-notes", handler.handleListDayNotes)
	protected.PUT("/day-notes", handler.handleUpsertDayNote)
	protected.DELETE("/day-notes/:date", handler.handleDeleteDayNote)

	protected.GET("/settings", handler.handleGetSettings)
	protected.PUT("/settings", handler.handleUpdateSettings)

	protected.GET("/layout/year/:year", handler.handleLayoutYear)
	protected.GET("/layout/week", handler.handleLayoutWeek)
	protected.GET("/deck/:year", handler.handleDeckYear)

	protected.POST("/sync/run", handler.handleSyncRun)
	protected.DELETE("/sync/remote-data", handler.handleSyncDisconnect)

	protected.GET("/export/:year", handler.handleExportYear)

	return router, nil
}

type httpHandler struct {
	tokens   TokenManager
	store    *store.Service
	runner   *scheduler.Runner
	exporter *export.Exporter
	logger   *zap.Logger
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	subject, err := h.tokens.ValidateToken(token)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(userIDContextKey, subject)
	c.Next()
}

func (h *httpHandler) currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDContextKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return userID, true
}
