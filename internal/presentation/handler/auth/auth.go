package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	authUseCase "github.com/hilthontt/dealerdesk/internal/application/usecases/auth"
	"github.com/hilthontt/dealerdesk/internal/domain"
	jsonhttp "github.com/hilthontt/dealerdesk/internal/infrastructure/json"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/validate"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler"
	"go.uber.org/zap"
)

type Handler struct {
	usecase      authUseCase.AuthUseCase
	users        domain.UserRepository
	tokens       *security.TokenManager
	validator    *validate.Validator
	secureCookie bool
	logger       *zap.SugaredLogger
}

func NewHandler(
	usecase authUseCase.AuthUseCase,
	users domain.UserRepository,
	tokens *security.TokenManager,
	validator *validate.Validator,
	secureCookie bool,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		usecase:      usecase,
		users:        users,
		tokens:       tokens,
		validator:    validator,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// PublicRoutes are reachable without a session.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
}

func (h *Handler) SessionRoutes(r chi.Router) {
	r.Get("/me", h.Me)
}

// UserRoutes lists users; admin guards role changes.
func (h *Handler) UserRoutes(r chi.Router, admin ...func(http.Handler) http.Handler) {
	r.Get("/", h.ListUsers)
	r.With(admin...).Put("/{id}/role", h.ChangeRole)
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := jsonhttp.Read(w, r, dst); err != nil {
		jsonhttp.WriteValidationError(w, err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		jsonhttp.WriteValidationError(w, err)
		return false
	}
	return true
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.read(w, r, &req) {
		return
	}

	user, err := h.usecase.Register(r.Context(), authUseCase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	_ = jsonhttp.Write(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.read(w, r, &req) {
		return
	}

	session, err := h.usecase.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, authUseCase.ErrInvalidCredentials) {
		jsonhttp.WriteError(w, http.StatusUnauthorized, err, err.Error())
		return
	}
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	security.SetSession(w, session.Token, h.tokens.TTL(), h.secureCookie)
	_ = jsonhttp.Write(w, http.StatusOK, LoginResponse{User: session.User, Token: session.Token})
}

func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	security.ClearSession(w, h.secureCookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := handler.Caller(w, r)
	if !ok {
		return
	}

	user, err := h.usecase.Me(r.Context(), caller)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}
	_ = jsonhttp.Write(w, http.StatusOK, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q, err := handler.ListQueryFromRequest(r, map[string]handler.FilterKind{"role": handler.FilterString})
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	users, total, err := h.users.List(r.Context(), q)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	_ = jsonhttp.Write(w, http.StatusOK, jsonhttp.Page[domain.User]{
		Items:  users,
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	userID, err := handler.URLID(r, "id")
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	var req ChangeRoleRequest
	if !h.read(w, r, &req) {
		return
	}

	user, err := h.usecase.ChangeRole(r.Context(), userID, req.Role)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}
	_ = jsonhttp.Write(w, http.StatusOK, user)
}
