package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"emocare/backend/internal/auth"
	"emocare/backend/internal/config"
	"emocare/backend/internal/db"
	"emocare/backend/internal/emotion"
	"emocare/backend/internal/logging"
	"emocare/backend/internal/profile"
	"emocare/backend/internal/reply"
	"emocare/backend/internal/responder"
	"emocare/backend/internal/server"
	"emocare/backend/internal/store"
	"emocare/backend/internal/suggestion"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.New(cfg.IsLocal(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logging.Sync(logger) }()

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:    cfg.PoolMaxConns,
		MinConns:    cfg.PoolMinConns,
		IdleTimeout: time.Duration(cfg.PoolIdleTimeoutSeconds) * time.Second,
	})
	if err != nil {
		logger.Fatal("database connect failed", zap.String("database", db.MaskURL(cfg.DatabaseURL)), zap.Error(err))
	}
	defer pool.Close()

	if err := db.ValidateRuntimeSchema(ctx, pool); err != nil {
		logger.Fatal("database schema mismatch", zap.Error(err))
	}

	lexicon := emotion.DefaultLexicon()
	if path := strings.TrimSpace(cfg.EmotionLexiconFile); path != "" {
		lexicon, err = emotion.LoadLexicon(path)
		if err != nil {
			logger.Fatal("load emotion lexicon failed", zap.String("path", path), zap.Error(err))
		}
	}

	chatResponder, err := newResponder(ctx, cfg)
	if err != nil {
		logger.Fatal("responder init failed", zap.String("provider", cfg.ResponderProvider), zap.Error(err))
	}

	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisClient, err = server.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis connect failed", zap.Error(err))
		}
		defer redisClient.Close()
	}
	messageLimit, err := server.NewMessageLimiter(cfg.RateLimitMessages, redisClient, logger)
	if err != nil {
		logger.Fatal("rate limiter init failed", zap.Error(err))
	}

	pg := store.New(pool, store.Options{
		AcquireTimeout: cfg.PoolAcquireTimeout(),
		Timezone:       cfg.SuggestionTimezone,
		DebugSQL:       cfg.DebugSQL,
		Logger:         logger,
	})
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL())
	profiles := profile.NewService(pg, suggestion.NewEngine(pg))
	pipeline := reply.NewPipeline(pg, chatResponder, reply.Options{
		Inferrer:     emotion.NewInferrer(lexicon),
		Region:       cfg.CrisisRegion,
		Timeout:      cfg.ResponderTimeout(),
		ContextLimit: cfg.ContextMessageLimit,
		Logger:       logger,
	})

	app := server.New(cfg, server.Deps{
		Auth:         auth.NewService(pg, profiles, tokens, logger),
		Tokens:       tokens,
		Chats:        pg,
		Replies:      pipeline,
		Profiles:     profiles,
		MessageLimit: messageLimit,
		Logger:       logger,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("emocare api listening",
			zap.String("app", cfg.AppName),
			zap.String("addr", "http://localhost:"+cfg.AppPort),
			zap.String("env", cfg.AppEnv),
			zap.String("provider", cfg.ResponderProvider),
			zap.String("database", db.MaskURL(cfg.DatabaseURL)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func newResponder(ctx context.Context, cfg config.Config) (responder.Responder, error) {
	switch cfg.ResponderProvider {
	case config.ProviderOpenAI:
		return responder.NewOpenAIResponder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.AIMaxOutputTokens, cfg.ResponderTimeout()), nil
	case config.ProviderMock:
		return responder.MockResponder{}, nil
	default:
		return responder.NewGeminiResponder(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AIMaxOutputTokens)
	}
}
