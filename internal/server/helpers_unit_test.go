package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, rec
}

func TestOptionalJSONAcceptsEmptyBody(t *testing.T) {
	c, rec := newTestContext("")
	var payload chatSessionRequest
	if !optionalJSON(c, &payload) {
		t.Fatalf("expected empty body to be accepted, got %d", rec.Code)
	}
	if payload.SessionID != "" {
		t.Fatalf("expected zero payload, got %+v", payload)
	}
}

func TestOptionalJSONRejectsMalformedBody(t *testing.T) {
	c, rec := newTestContext(`{"sessionId":`)
	var payload chatSessionRequest
	if optionalJSON(c, &payload) {
		t.Fatalf("expected malformed body to be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMustJSONEnforcesBindingTags(t *testing.T) {
	c, rec := newTestContext(`{"email":"ana@example.com"}`)
	var payload loginRequest
	if mustJSON(c, &payload) {
		t.Fatalf("expected missing password to fail binding")
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid request payload") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthUserIDFromContext(t *testing.T) {
	c, _ := newTestContext("")
	if _, ok := authUserIDFromContext(c); ok {
		t.Fatalf("expected no user before auth")
	}
	c.Set(authUserIDKey, "")
	if _, ok := authUserIDFromContext(c); ok {
		t.Fatalf("expected empty user id to be rejected")
	}
	c.Set(authUserIDKey, "u1")
	if got, ok := authUserIDFromContext(c); !ok || got != "u1" {
		t.Fatalf("expected u1, got %q %v", got, ok)
	}
}

func TestPathIDTrimsWhitespace(t *testing.T) {
	c, _ := newTestContext("")
	c.Params = gin.Params{{Key: "id", Value: " abc "}}
	if got := pathID(c); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}
