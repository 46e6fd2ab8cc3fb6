package json_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsonhttp "github.com/hilthontt/dealerdesk/internal/infrastructure/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

func TestRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"a"}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "unknown field", body: `{"nom":"a"}`, wantErr: true},
		{name: "two objects", body: `{"name":"a"}{"name":"b"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := jsonhttp.Read(httptest.NewRecorder(), r, &p)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", p.Name)
		})
	}
}

func TestWriteRateLimitError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	jsonhttp.WriteRateLimitError(rec, 3)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too Many Requests","message":"Too many requests. Please try again later."}`, rec.Body.String())
}
