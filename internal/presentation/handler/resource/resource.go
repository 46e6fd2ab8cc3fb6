// Package resource serves list/create/get/update/delete endpoints for any
// repository-backed entity.
package resource

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/dealerdesk/internal/domain"
	jsonhttp "github.com/hilthontt/dealerdesk/internal/infrastructure/json"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/validate"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler"
	"go.uber.org/zap"
)

// Input is a request body that knows how to copy itself onto an entity.
type Input[T any, In any] interface {
	*In
	Apply(dst *T, caller security.Identity)
}

type Options[T any] struct {
	Filters map[string]handler.FilterKind
	// Check runs before an entity is written, e.g. to confirm referenced
	// records exist.
	Check func(ctx context.Context, entity *T) error
	// AfterCreate runs once the entity is committed.
	AfterCreate func(ctx context.Context, entity *T)
	// DeleteMiddleware guards DELETE /{id}.
	DeleteMiddleware []func(http.Handler) http.Handler
}

type Handler[T any, In any, PIn Input[T, In]] struct {
	repo      domain.Repository[T]
	validator *validate.Validator
	logger    *zap.SugaredLogger
	opts      Options[T]
}

func NewHandler[T any, In any, PIn Input[T, In]](
	repo domain.Repository[T],
	validator *validate.Validator,
	logger *zap.SugaredLogger,
	opts Options[T],
) *Handler[T, In, PIn] {
	return &Handler[T, In, PIn]{
		repo:      repo,
		validator: validator,
		logger:    logger,
		opts:      opts,
	}
}

func (h *Handler[T, In, PIn]) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.With(h.opts.DeleteMiddleware...).Delete("/{id}", h.Delete)
}

func (h *Handler[T, In, PIn]) decode(w http.ResponseWriter, r *http.Request) (PIn, bool) {
	in := PIn(new(In))
	if err := jsonhttp.Read(w, r, in); err != nil {
		jsonhttp.WriteValidationError(w, err)
		return nil, false
	}
	if err := h.validator.Struct(in); err != nil {
		jsonhttp.WriteValidationError(w, err)
		return nil, false
	}
	return in, true
}

func (h *Handler[T, In, PIn]) check(ctx context.Context, entity *T) error {
	if h.opts.Check == nil {
		return nil
	}
	return h.opts.Check(ctx, entity)
}

func (h *Handler[T, In, PIn]) List(w http.ResponseWriter, r *http.Request) {
	q, err := handler.ListQueryFromRequest(r, h.opts.Filters)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	items, total, err := h.repo.List(r.Context(), q)
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

func (h *Handler[T, In, PIn]) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := handler.Caller(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}

	entity := new(T)
	in.Apply(entity, caller)
	if err := h.check(r.Context(), entity); err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.repo.Create(r.Context(), entity); err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	if h.opts.AfterCreate != nil {
		h.opts.AfterCreate(r.Context(), entity)
	}

	_ = jsonhttp.Write(w, http.StatusCreated, entity)
}

func (h *Handler[T, In, PIn]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLID(r, "id")
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	entity, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	_ = jsonhttp.Write(w, http.StatusOK, entity)
}

func (h *Handler[T, In, PIn]) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := handler.Caller(w, r)
	if !ok {
		return
	}
	id, err := handler.URLID(r, "id")
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}

	entity, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	in.Apply(entity, caller)
	if err := h.check(r.Context(), entity); err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}
	if err := h.repo.Update(r.Context(), entity); err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	_ = jsonhttp.Write(w, http.StatusOK, entity)
}

func (h *Handler[T, In, PIn]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.URLID(r, "id")
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
