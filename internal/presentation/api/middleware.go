package api

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	jsonhttp "github.com/hilthontt/dealerdesk/internal/infrastructure/json"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler"
)

func (app *Application) rateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := app.ratelimiter.GetSourceKey(r)
		if allow, retryAfter := app.ratelimiter.Allow(key); !allow {
			app.logger.Debugw("request rate limited", logging.Fields(logging.General, logging.RateLimiting, map[logging.ExtraKey]any{
				logging.ClientIp: key,
				logging.Path:     r.URL.Path,
			})...)
			jsonhttp.WriteRateLimitError(w, int(retryAfter.Seconds()+0.5))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) enableCors(next http.Handler) http.Handler {
	allowAny := slices.Contains(app.config.HTTP.AllowedOrigins, "*")
	headers := strings.Join(app.config.HTTP.AllowedHeaders, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAny || slices.Contains(app.config.HTTP.AllowedOrigins, origin)) {
			// Cookies are only sent back to an explicitly echoed origin.
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", headers)

		// allow preflight requests from the browser API
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := logging.Fields(logging.RequestResponse, logging.Api, map[logging.ExtraKey]any{
			logging.ClientIp:   r.RemoteAddr,
			logging.Method:     r.Method,
			logging.Path:       r.URL.Path,
			logging.StatusCode: status,
			logging.BodySize:   ww.BytesWritten(),
			logging.Latency:    time.Since(start).String(),
			logging.RequestID:  middleware.GetReqID(r.Context()),
		})

		switch {
		case status >= http.StatusInternalServerError:
			app.logger.Errorw("request completed", fields...)
		case status >= http.StatusBadRequest:
			app.logger.Warnw("request completed", fields...)
		default:
			app.logger.Infow("request completed", fields...)
		}
	})
}

// RequireAuth resolves the session token from the bearer header or cookie
// and stores the identity on the request context.
func (app *Application) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := security.TokenFromRequest(r)
		if raw == "" {
			handler.WriteUnauthorized(w)
			return
		}

		identity, err := app.tokens.Parse(raw)
		if err != nil {
			handler.WriteUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(security.WithIdentity(r.Context(), identity)))
	})
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := security.IdentityFromContext(r.Context())
			if !ok {
				handler.WriteUnauthorized(w)
				return
			}
			if !slices.Contains(roles, identity.Role) {
				jsonhttp.WriteError(w, http.StatusForbidden, nil, "Insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
