package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"emocare/backend/internal/apperr"
	"emocare/backend/internal/auth"
	"emocare/backend/internal/config"
	"emocare/backend/internal/model"
	"emocare/backend/internal/profile"
	"emocare/backend/internal/reply"
	"emocare/backend/internal/suggestion"
)

const authUserIDKey = "authUserID"

type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (model.User, error)
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
}

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type ChatStore interface {
	CreateSession(ctx context.Context, userID string) (model.ChatSession, error)
	SessionForUser(ctx context.Context, userID, sessionID string) (model.ChatSession, error)
	ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error)
	EndSession(ctx context.Context, userID, sessionID string) (model.ChatSession, error)
	SessionMessages(ctx context.Context, sessionID string) ([]model.Message, error)
}

type MessageSender interface {
	Send(ctx context.Context, userID, sessionID, content string) (reply.Outcome, error)
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*model.UserProfile, error)
	Upsert(ctx context.Context, userID string, in profile.Input) (model.UserProfile, error)
	Suggest(ctx context.Context, userID string) (suggestion.Set, suggestion.Metrics, error)
	ApplySuggestions(ctx context.Context, userID string) (model.UserProfile, suggestion.Set, error)
	SaveHistorySummary(ctx context.Context, userID, summary string) (model.UserHistory, error)
}

// Deps are the collaborators the handlers call. MessageLimit may be nil.
type Deps struct {
	Auth         AuthService
	Tokens       TokenVerifier
	Chats        ChatStore
	Replies      MessageSender
	Profiles     ProfileService
	MessageLimit gin.HandlerFunc
	Logger       *zap.Logger
}

type App struct {
	cfg          config.Config
	auth         AuthService
	tokens       TokenVerifier
	chats        ChatStore
	replies      MessageSender
	profiles     ProfileService
	messageLimit gin.HandlerFunc
	logger       *zap.Logger
}

func New(cfg config.Config, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	messageLimit := deps.MessageLimit
	if messageLimit == nil {
		messageLimit = func(c *gin.Context) { c.Next() }
	}
	return &App{
		cfg:          cfg,
		auth:         deps.Auth,
		tokens:       deps.Tokens,
		chats:        deps.Chats,
		replies:      deps.Replies,
		profiles:     deps.Profiles,
		messageLimit: messageLimit,
		logger:       logger,
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(a.requestLogger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", a.health)
	router.GET("/health", a.health)

	api := router.Group(a.cfg.APIPrefix)
	api.POST("/register", a.register)
	api.POST("/login", a.login)
	api.GET("/help/resources", a.helpResources)

	protected := api.Group("")
	protected.Use(a.authMiddleware())

	protected.POST("/chat/session", a.openChatSession)
	protected.POST("/chat/message", a.messageLimit, a.sendChatMessage)
	protected.GET("/chat/sessions", a.listChatSessions)
	protected.GET("/chat/session/:id/messages", a.getChatMessages)
	protected.POST("/chat/session/:id/end", a.endChatSession)

	protected.GET("/user/profile", a.getProfile)
	protected.PUT("/user/profile", a.putProfile)
	protected.GET("/user/profile/suggestions", a.previewSuggestions)
	protected.POST("/user/profile/apply-suggestions", a.applySuggestions)
	protected.POST("/user/history/summarize", a.summarizeHistory)

	return router
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "emocare-api",
		"name":    a.cfg.AppName,
	})
}

// authMiddleware trusts the verified token subject as the user id.
func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, http.StatusUnauthorized, apperr.Message(err))
			return
		}
		userID, err := a.tokens.Verify(token)
		if err != nil {
			writeError(c, http.StatusUnauthorized, auth.InvalidTokenMessage)
			return
		}
		c.Set(authUserIDKey, userID)
		c.Next()
	}
}

func (a *App) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status_code", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if userID, ok := authUserIDFromContext(c); ok {
			fields = append(fields, zap.String("user_id", userID))
		}
		a.logger.Info("http_request", fields...)
	}
}

func authUserIDFromContext(c *gin.Context) (string, bool) {
	raw, ok := c.Get(authUserIDKey)
	if !ok {
		return "", false
	}
	userID, ok := raw.(string)
	return userID, ok && userID != ""
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// writeAppError maps error kinds to status codes. Unknown errors are logged
// and reported without their cause.
func (a *App) writeAppError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		a.logger.Error("unhandled_error", zap.String("path", c.FullPath()), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	switch appErr.Kind {
	case apperr.KindValidation:
		writeError(c, http.StatusBadRequest, appErr.Message)
	case apperr.KindNotFound:
		writeError(c, http.StatusNotFound, appErr.Message)
	case apperr.KindAuth:
		writeError(c, http.StatusUnauthorized, appErr.Message)
	default:
		a.logger.Error("request_failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", appErr.Kind.String()),
			zap.Error(err),
		)
		message := appErr.Message
		if message == "" {
			message = "Internal server error"
		}
		writeError(c, http.StatusInternalServerError, message)
	}
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// optionalJSON binds a body that clients may omit entirely.
func optionalJSON(c *gin.Context, payload any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(payload); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := authUserIDFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, auth.InvalidTokenMessage)
		return "", false
	}
	return userID, true
}

func pathID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}
