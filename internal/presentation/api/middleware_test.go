package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/configs"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	limiter := ratelimiter.New(ratelimiter.Config{MaxRatePerSecond: 1, MaxBurst: 2, CacheTTL: time.Minute})
	t.Cleanup(limiter.Close)

	return &Application{
		config: configs.Config{HTTP: configs.HTTPConfig{
			AllowedOrigins: []string{"https://crm.example.com"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		}},
		logger:      zap.NewNop().Sugar(),
		ratelimiter: limiter,
		tokens:      security.NewTokenManager("secret", time.Hour, "dealerdesk"),
	}
}

func echoIdentity(w http.ResponseWriter, r *http.Request) {
	id, ok := security.IdentityFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(id.Name))
}

func TestRequireAuth(t *testing.T) {
	app := newTestApp(t)
	token, err := app.tokens.Generate(security.Identity{UserID: 7, Role: domain.RoleSales, Name: "Dana"})
	require.NoError(t, err)
	h := app.RequireAuth(http.HandlerFunc(echoIdentity))

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Dana", rec.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: security.SessionCookie, Value: token})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("tampered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(domain.RoleAdmin)(http.HandlerFunc(echoIdentity))

	serve := func(id *security.Identity) int {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		if id != nil {
			req = req.WithContext(security.WithIdentity(req.Context(), *id))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(&security.Identity{UserID: 2, Role: domain.RoleManager}))
	assert.Equal(t, http.StatusOK, serve(&security.Identity{UserID: 1, Role: domain.RoleAdmin}))
}

func TestEnableCors(t *testing.T) {
	app := newTestApp(t)
	h := app.enableCors(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/clients", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://crm.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterMiddleware(t *testing.T) {
	app := newTestApp(t)
	h := app.rateLimiterMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
