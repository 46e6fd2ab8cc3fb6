package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name is required", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", domain.ErrConflict), http.StatusConflict},
		{domain.ErrForbidden, http.StatusForbidden},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
			WriteError(rec, req, zap.NewNop().Sugar(), tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestWriteErrorLogsInternal(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notes", nil)

	WriteError(rec, req, zap.New(core).Sugar(), errors.New("disk full"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/api/notes", fields["Path"])
	assert.Equal(t, "disk full", fields["ErrorMessage"])
	assert.NotContains(t, rec.Body.String(), "disk full")
}

func TestListQueryFromRequest(t *testing.T) {
	filters := map[string]FilterKind{
		"status":    FilterString,
		"client_id": FilterUint,
		"year":      FilterInt,
	}

	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=20&status=lead&client_id=3&year=2021&ignored=x", nil)
	q, err := ListQueryFromRequest(req, filters)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxPageSize, q.Limit)
	assert.Equal(t, 20, q.Offset)
	assert.Equal(t, map[string]any{"status": "lead", "client_id": uint(3), "year": 2021}, q.Filters)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	q, err = ListQueryFromRequest(req, filters)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPageSize, q.Limit)
	assert.Empty(t, q.Filters)

	for _, raw := range []string{"/?client_id=abc", "/?year=x", "/?offset=-2", "/?limit=ten"} {
		_, err := ListQueryFromRequest(httptest.NewRequest(http.MethodGet, raw, nil), filters)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, raw)
	}
}
