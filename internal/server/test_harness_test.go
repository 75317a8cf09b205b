package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"emocare/backend/internal/auth"
	"emocare/backend/internal/config"
	"emocare/backend/internal/db"
	"emocare/backend/internal/emotion"
	"emocare/backend/internal/profile"
	"emocare/backend/internal/reply"
	"emocare/backend/internal/responder"
	"emocare/backend/internal/store"
	"emocare/backend/internal/suggestion"
)

var (
	testPool              *pgxpool.Pool
	baseTestConfig        config.Config
	integrationDBReady    bool
	integrationSkipReason string
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	baseTestConfig = newTestConfig()

	testDatabaseURL := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if testDatabaseURL == "" {
		integrationSkipReason = "integration tests skipped: TEST_DATABASE_URL is not set"
		fmt.Fprintln(os.Stderr, integrationSkipReason)
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.Connect(ctx, testDatabaseURL, db.PoolOptions{MaxConns: 4})
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration test setup failed: cannot connect TEST_DATABASE_URL: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = db.Migrate(ctx, pool)
	if err == nil {
		err = db.ValidateRuntimeSchema(ctx, pool)
	}
	cancel()
	if err != nil {
		pool.Close()
		fmt.Fprintf(os.Stderr, "integration test setup failed: %v\n", err)
		os.Exit(1)
	}

	testPool = pool
	integrationDBReady = true

	exitCode := m.Run()
	testPool.Close()
	os.Exit(exitCode)
}

func newTestConfig() config.Config {
	cfg := config.Config{
		AppEnv:              "test",
		AppName:             "Emocare API Test",
		APIPrefix:           "/api",
		AppPort:             "0",
		DatabaseURL:         "test",
		JWTSecret:           "test-secret-1234567890",
		JWTTTLHours:         1,
		ResponderProvider:   config.ProviderMock,
		ContextMessageLimit: 15,
		CrisisRegion:        "CO",
		SuggestionTimezone:  "UTC",
		CORSAllowOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
			"http://localhost:3000",
		},
	}
	if v := strings.TrimSpace(os.Getenv("TEST_JWT_SECRET")); v != "" {
		cfg.JWTSecret = v
	}
	return cfg
}

func requireIntegration(t *testing.T) {
	t.Helper()
	if !integrationDBReady {
		if integrationSkipReason == "" {
			integrationSkipReason = "integration tests skipped: TEST_DATABASE_URL is not configured"
		}
		t.Skip(integrationSkipReason)
	}
}

func testTokens(cfg config.Config) *auth.TokenIssuer {
	return auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL())
}

// newTestRouter wires the real store and services against TEST_DATABASE_URL
// with the given responder.
func newTestRouter(t *testing.T, r responder.Responder) *gin.Engine {
	t.Helper()
	requireIntegration(t)
	cfg := baseTestConfig

	pg := store.New(testPool, store.Options{AcquireTimeout: 2 * time.Second, Timezone: cfg.SuggestionTimezone})
	profiles := profile.NewService(pg, suggestion.NewEngine(pg))
	authService := auth.NewService(pg, profiles, testTokens(cfg), nil)
	pipeline := reply.NewPipeline(pg, r, reply.Options{
		Inferrer:     emotion.NewInferrer(nil),
		Region:       cfg.CrisisRegion,
		Timeout:      2 * time.Second,
		ContextLimit: cfg.ContextMessageLimit,
	})
	limit, err := NewMessageLimiter("1000-M", nil, nil)
	if err != nil {
		t.Fatalf("create limiter: %v", err)
	}

	return New(cfg, Deps{
		Auth:         authService,
		Tokens:       testTokens(cfg),
		Chats:        pg,
		Replies:      pipeline,
		Profiles:     profiles,
		MessageLimit: limit,
	}).Router()
}

// seedUser inserts a user directly and returns its id.
func seedUser(t *testing.T) (string, string) {
	t.Helper()
	requireIntegration(t)

	userID := testID()
	email := fmt.Sprintf("user-%s@example.com", userID[:8])
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := testPool.Exec(
		ctx,
		`INSERT INTO "User" ("userId", email, name, "passwordHash", "createdAt") VALUES ($1, $2, $3, $4, NOW())`,
		userID,
		email,
		"Test User",
		string(hash),
	); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testPool.Exec(context.Background(), `DELETE FROM "User" WHERE "userId" = $1`, userID)
	})
	return userID, email
}

func signToken(t *testing.T, sub string, overrides map[string]any) string {
	t.Helper()
	return signTokenWithConfig(t, baseTestConfig, sub, overrides)
}

func signTokenWithConfig(t *testing.T, cfg config.Config, sub string, overrides map[string]any) string {
	t.Helper()

	claims := jwt.MapClaims{
		"exp": time.Now().UTC().Add(1 * time.Hour).Unix(),
		"iat": time.Now().UTC().Add(-1 * time.Minute).Unix(),
	}
	if strings.TrimSpace(sub) != "" {
		claims["sub"] = sub
	}
	if strings.TrimSpace(cfg.JWTAudience) != "" {
		claims["aud"] = cfg.JWTAudience
	}
	if strings.TrimSpace(cfg.JWTIssuer) != "" {
		claims["iss"] = cfg.JWTIssuer
	}
	for key, value := range overrides {
		if value == nil {
			delete(claims, key)
			continue
		}
		claims[key] = value
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func performRequest(
	t *testing.T,
	router http.Handler,
	method, targetPath, token string,
	body any,
	headers map[string]string,
) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, targetPath, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSONMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response JSON: %v; body=%s", err, rec.Body.String())
	}
	return payload
}

func decodeJSONList(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()
	var payload []any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response JSON list: %v; body=%s", err, rec.Body.String())
	}
	return payload
}

func responseError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeJSONMap(t, rec)
	message, _ := body["error"].(string)
	return message
}

func testID() string {
	return uuid.NewString()
}
