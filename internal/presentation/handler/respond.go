// Package handler holds helpers shared by the HTTP handlers.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/dealerdesk/internal/domain"
	jsonhttp "github.com/hilthontt/dealerdesk/internal/infrastructure/json"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"go.uber.org/zap"
)

// WriteError maps domain errors to HTTP statuses. Anything unrecognised is
// logged and reported as a 500.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		jsonhttp.WriteValidationError(w, err)
	case errors.Is(err, domain.ErrNotFound):
		jsonhttp.WriteNotFoundError(w, err.Error())
	case errors.Is(err, domain.ErrConflict):
		jsonhttp.WriteError(w, http.StatusConflict, err, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		jsonhttp.WriteError(w, http.StatusForbidden, err, err.Error())
	default:
		logger.Errorw("request failed", logging.Fields(logging.RequestResponse, logging.Api, map[logging.ExtraKey]any{
			logging.Method:       r.Method,
			logging.Path:         r.URL.Path,
			logging.ErrorMessage: err.Error(),
		})...)
		jsonhttp.WriteInternalError(w, err)
	}
}

func WriteUnauthorized(w http.ResponseWriter) {
	jsonhttp.WriteError(w, http.StatusUnauthorized, errors.New("unauthorized"), "Missing or invalid authentication")
}

// Caller returns the identity stored by the auth middleware.
func Caller(w http.ResponseWriter, r *http.Request) (security.Identity, bool) {
	id, ok := security.IdentityFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w)
	}
	return id, ok
}

// URLID parses a positive numeric route parameter.
func URLID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, name)
	}
	return uint(id), nil
}

// FilterKind tells ListQueryFromRequest how to parse a filter value.
type FilterKind int

const (
	FilterString FilterKind = iota
	FilterUint
	FilterInt
)

// ListQueryFromRequest reads limit, offset and the named filters from the
// query string. Unlisted parameters are ignored.
func ListQueryFromRequest(r *http.Request, filters map[string]FilterKind) (domain.ListQuery, error) {
	values := r.URL.Query()
	q := domain.ListQuery{Filters: map[string]any{}}

	var err error
	if raw := values.Get("limit"); raw != "" {
		if q.Limit, err = strconv.Atoi(raw); err != nil || q.Limit < 0 {
			return q, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrInvalidInput)
		}
	}
	if raw := values.Get("offset"); raw != "" {
		if q.Offset, err = strconv.Atoi(raw); err != nil || q.Offset < 0 {
			return q, fmt.Errorf("%w: offset must be a non-negative integer", domain.ErrInvalidInput)
		}
	}

	for name, kind := range filters {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		switch kind {
		case FilterUint:
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return q, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, name)
			}
			q.Filters[name] = uint(v)
		case FilterInt:
			v, err := strconv.Atoi(raw)
			if err != nil {
				return q, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
			}
			q.Filters[name] = v
		default:
			q.Filters[name] = raw
		}
	}

	q.Limit = q.PageSize()
	return q, nil
}
