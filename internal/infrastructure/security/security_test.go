package security_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	t.Parallel()

	id := security.Identity{UserID: 42, Role: "sales", Name: "Dana"}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		m := security.NewTokenManager("secret", time.Hour, "dealerdesk")
		token, err := m.Generate(id)
		require.NoError(t, err)

		got, err := m.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()

		token, err := security.NewTokenManager("secret", time.Hour, "dealerdesk").Generate(id)
		require.NoError(t, err)

		_, err = security.NewTokenManager("other", time.Hour, "dealerdesk").Parse(token)
		require.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()

		m := security.NewTokenManager("secret", -time.Minute, "dealerdesk")
		token, err := m.Generate(id)
		require.NoError(t, err)

		_, err = m.Parse(token)
		require.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		_, err := security.NewTokenManager("secret", time.Hour, "dealerdesk").Parse("not-a-token")
		require.ErrorIs(t, err, security.ErrInvalidToken)
	})
}

func TestPassword(t *testing.T) {
	t.Parallel()

	hash, err := security.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	require.NoError(t, security.CheckPassword(hash, "correct horse"))
	require.ErrorIs(t, security.CheckPassword(hash, "battery staple"), security.ErrPasswordMismatch)
}

func TestTokenFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("bearer", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer abc")
		assert.Equal(t, "abc", security.TokenFromRequest(r))
	})

	t.Run("cookie", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: security.SessionCookie, Value: "xyz"})
		assert.Equal(t, "xyz", security.TokenFromRequest(r))
	})

	t.Run("none", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Empty(t, security.TokenFromRequest(r))
	})
}

func TestSessionCookie(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	security.SetSession(rec, "tok", time.Hour, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, security.SessionCookie, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
}

func TestIdentityContext(t *testing.T) {
	t.Parallel()

	_, ok := security.IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := security.WithIdentity(context.Background(), security.Identity{UserID: 1, Role: "admin"})
	id, ok := security.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.True(t, id.IsAdmin())
	assert.Equal(t, "1", id.Subject())
}
