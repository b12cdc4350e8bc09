package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"empathic-credit/internal/service"
)

func newTestAuthRouter(t *testing.T) (*gin.Engine, *service.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("ingest-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}

	jwtSvc := service.NewJWTService("secret", 15*time.Minute)
	h := NewAuthHandler(zap.NewNop(), jwtSvc, "svc:ingest", string(hash))

	r := gin.New()
	r.POST("/token", h.Token)
	return r, jwtSvc
}

func TestTokenHandler_IssuesTokenForValidCredentials(t *testing.T) {
	r, jwtSvc := newTestAuthRouter(t)

	rec := postJSON(t, r, "/token", `{"client_id":"svc:ingest","client_secret":"ingest-secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp service.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	claims, err := jwtSvc.ParseAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token must parse: %v", err)
	}
	if claims.ClientID != "svc:ingest" {
		t.Fatalf("unexpected client id %s", claims.ClientID)
	}
}

func TestTokenHandler_RejectsWrongSecret(t *testing.T) {
	r, _ := newTestAuthRouter(t)

	rec := postJSON(t, r, "/token", `{"client_id":"svc:ingest","client_secret":"wrong"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestTokenHandler_RejectsUnknownClient(t *testing.T) {
	r, _ := newTestAuthRouter(t)

	rec := postJSON(t, r, "/token", `{"client_id":"svc:other","client_secret":"ingest-secret"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestTokenHandler_RejectsMissingFields(t *testing.T) {
	r, _ := newTestAuthRouter(t)

	rec := postJSON(t, r, "/token", `{"client_id":"svc:ingest"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
