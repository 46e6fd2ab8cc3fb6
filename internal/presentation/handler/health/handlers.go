package health

import (
	"context"
	"net/http"
	"time"

	jsonhttp "github.com/hilthontt/dealerdesk/internal/infrastructure/json"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/ws"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

type Handler struct {
	db          Pinger
	distributor ws.Distributor
	registry    *ws.Registry
	rooms       *ws.RoomManager
	now         func() time.Time
}

func NewHandler(db Pinger, rooms *ws.RoomManager, registry *ws.Registry) *Handler {
	return &Handler{
		db:          db,
		distributor: rooms.Distributor(),
		registry:    registry,
		rooms:       rooms,
		now:         time.Now,
	}
}

type realtimeStatus struct {
	Distribution string `json:"distribution"`
	Distributed  bool   `json:"distributed"`
	Connections  int    `json:"connections"`
	Rooms        int    `json:"rooms"`
}

type healthResponse struct {
	Status    string         `json:"status"`
	Database  string         `json:"database"`
	Realtime  realtimeStatus `json:"realtime"`
	Timestamp time.Time      `json:"timestamp"`
}

// GetHealth answers 503 when the database is unreachable. Running without a
// distribution backend is reported but not treated as unhealthy.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Database: "up",
		Realtime: realtimeStatus{
			Distribution: h.distributor.Name(),
			Distributed:  h.distributor.Distributed(),
			Connections:  h.registry.Count(),
			Rooms:        h.rooms.RoomCount(),
		},
		Timestamp: h.now().UTC(),
	}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := h.db(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
		status = http.StatusServiceUnavailable
	}

	_ = jsonhttp.Write(w, status, resp)
}
