package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginmw "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const defaultMessageRate = "30-M"

// NewRedisClient connects to REDIS_URL and checks it with a ping.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewMessageLimiter limits message sends per authenticated user. Counters
// live in redisClient when given, else in process memory. It must run after
// authMiddleware.
func NewMessageLimiter(rate string, redisClient *redis.Client, logger *zap.Logger) (gin.HandlerFunc, error) {
	if strings.TrimSpace(rate) == "" {
		rate = defaultMessageRate
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var store limiter.Store
	if redisClient != nil {
		store, err = redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{
			Prefix:   "emocare_message_limit",
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis limiter store: %w", err)
		}
	} else {
		store = memory.NewStore()
	}

	instance := limiter.New(store, parsed)
	return ginmw.NewMiddleware(
		instance,
		ginmw.WithKeyGetter(func(c *gin.Context) string {
			if userID, ok := authUserIDFromContext(c); ok {
				return "user:" + userID
			}
			return "ip:" + c.ClientIP()
		}),
		ginmw.WithLimitReachedHandler(func(c *gin.Context) {
			writeError(c, http.StatusTooManyRequests, "Too many messages, please slow down")
		}),
		ginmw.WithErrorHandler(func(c *gin.Context, err error) {
			logger.Warn("rate_limiter_unavailable", zap.Error(err))
			c.Next()
		}),
	), nil
}
