package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealtimeObserver(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.RoomsActive(3)
	m.Published("local")
	m.DeliveryDropped()
	m.SetDistributed(true)

	expected := `
# HELP dealerdesk_realtime_connections Open websocket connections.
# TYPE dealerdesk_realtime_connections gauge
dealerdesk_realtime_connections 1
# HELP dealerdesk_realtime_distributed 1 when a cross-instance distribution backend is active, 0 in single-instance mode.
# TYPE dealerdesk_realtime_distributed gauge
dealerdesk_realtime_distributed 1
# HELP dealerdesk_realtime_rooms Rooms with at least one member on this instance.
# TYPE dealerdesk_realtime_rooms gauge
dealerdesk_realtime_rooms 3
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"dealerdesk_realtime_connections",
		"dealerdesk_realtime_distributed",
		"dealerdesk_realtime_rooms",
	))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/clients/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `dealerdesk_http_requests_total{method="GET",route="/clients/{id}",status="204"} 2`)
}
