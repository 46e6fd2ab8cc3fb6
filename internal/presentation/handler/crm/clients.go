package crm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/dealerdesk/internal/domain"
	jsonhttp "github.com/hilthontt/dealerdesk/internal/infrastructure/json"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler"
	"go.uber.org/zap"
)

// ClientHandler serves the client routes that are not plain CRUD: tagging
// and the activity timeline.
type ClientHandler struct {
	clients domain.ClientRepository
	notes   domain.Repository[domain.Note]
	calls   domain.Repository[domain.Call]
	emails  domain.Repository[domain.Email]
	logger  *zap.SugaredLogger
}

func NewClientHandler(
	clients domain.ClientRepository,
	notes domain.Repository[domain.Note],
	calls domain.Repository[domain.Call],
	emails domain.Repository[domain.Email],
	logger *zap.SugaredLogger,
) *ClientHandler {
	return &ClientHandler{
		clients: clients,
		notes:   notes,
		calls:   calls,
		emails:  emails,
		logger:  logger,
	}
}

func (h *ClientHandler) Routes(r chi.Router) {
	r.Post("/{id}/tags/{tagId}", h.AddTag)
	r.Delete("/{id}/tags/{tagId}", h.RemoveTag)
	r.Get("/{id}/notes", timeline(h, h.notes))
	r.Get("/{id}/calls", timeline(h, h.calls))
	r.Get("/{id}/emails", timeline(h, h.emails))
}

// ClientExists is a resource Check for records that reference a client.
func ClientExists[T domain.ClientActivity](clients domain.Repository[domain.Client]) func(context.Context, *T) error {
	return func(ctx context.Context, record *T) error {
		clientID := (*record).GetClientID()
		if _, err := clients.GetByID(ctx, clientID); err != nil {
			return fmt.Errorf("%w: client %d: %w", domain.ErrInvalidInput, clientID, err)
		}
		return nil
	}
}

func (h *ClientHandler) tagParams(r *http.Request) (uint, uint, error) {
	clientID, err := handler.URLID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	tagID, err := handler.URLID(r, "tagId")
	if err != nil {
		return 0, 0, err
	}
	return clientID, tagID, nil
}

func (h *ClientHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	clientID, tagID, err := h.tagParams(r)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.clients.AddTag(r.Context(), clientID, tagID); err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	client, err := h.clients.GetByID(r.Context(), clientID)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}
	_ = jsonhttp.Write(w, http.StatusOK, client)
}

func (h *ClientHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	clientID, tagID, err := h.tagParams(r)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.clients.RemoveTag(r.Context(), clientID, tagID); err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func timeline[T any](h *ClientHandler, repo domain.Repository[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := handler.URLID(r, "id")
		if err != nil {
			handler.WriteError(w, r, h.logger, err)
			return
		}
		if _, err := h.clients.GetByID(r.Context(), clientID); err != nil {
			handler.WriteError(w, r, h.logger, err)
			return
		}

		q, err := handler.ListQueryFromRequest(r, nil)
		if err != nil {
			handler.WriteError(w, r, h.logger, err)
			return
		}
		q.Filters["client_id"] = clientID

		items, total, err := repo.List(r.Context(), q)
		if err != nil {
			handler.WriteError(w, r, h.logger, err)
			return
		}

		_ = jsonhttp.Write(w, http.StatusOK, jsonhttp.Page[T]{
			Items:  items,
			Total:  total,
			Limit:  q.Limit,
			Offset: q.Offset,
		})
	}
}
