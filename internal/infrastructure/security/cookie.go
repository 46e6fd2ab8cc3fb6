package security

import (
	"net/http"
	"strings"
	"time"
)

const SessionCookie = "dealerdesk_token"

type cookieConfig struct {
	name     string
	value    string
	path     string
	httpOnly bool
	secure   bool
	maxAge   int
}

func setSecureCookie(w http.ResponseWriter, cfg cookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.name,
		Value:    cfg.value,
		Path:     cfg.path,
		HttpOnly: cfg.httpOnly,
		MaxAge:   cfg.maxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   cfg.secure,
	})
}

func SetSession(w http.ResponseWriter, token string, lifetime time.Duration, secure bool) {
	setSecureCookie(w, cookieConfig{
		name:     SessionCookie,
		value:    token,
		path:     "/",
		httpOnly: true,
		secure:   secure,
		maxAge:   int(lifetime.Seconds()),
	})
}

func ClearSession(w http.ResponseWriter, secure bool) {
	setSecureCookie(w, cookieConfig{
		name:     SessionCookie,
		value:    "",
		path:     "/",
		httpOnly: true,
		secure:   secure,
		maxAge:   -1,
	})
}

// TokenFromRequest reads the bearer header first (API clients), then the
// session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
