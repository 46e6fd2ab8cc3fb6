package teams

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/dealerdesk/internal/application/usecases/teammessage"
	"github.com/hilthontt/dealerdesk/internal/domain"
	jsonhttp "github.com/hilthontt/dealerdesk/internal/infrastructure/json"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/validate"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler"
	"go.uber.org/zap"
)

// MemberEvictor disconnects a removed member from the team's live room.
type MemberEvictor interface {
	RemoveTeamMember(ctx context.Context, teamID, userID uint) error
}

type Handler struct {
	teams     domain.TeamRepository
	messages  teammessage.TeamMessageUseCase
	evictor   MemberEvictor
	validator *validate.Validator
	logger    *zap.SugaredLogger
}

func NewHandler(
	teams domain.TeamRepository,
	messages teammessage.TeamMessageUseCase,
	evictor MemberEvictor,
	validator *validate.Validator,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		teams:     teams,
		messages:  messages,
		evictor:   evictor,
		validator: validator,
		logger:    logger,
	}
}

// Routes mounts the member and message routes. manage guards membership
// changes.
func (h *Handler) Routes(r chi.Router, manage ...func(http.Handler) http.Handler) {
	r.Get("/{id}/members", h.GetMembers)
	r.With(manage...).Post("/{id}/members/{userId}", h.AddMember)
	r.With(manage...).Delete("/{id}/members/{userId}", h.RemoveMember)
	r.Get("/{id}/messages", h.GetMessages)
	r.Post("/{id}/messages", h.SendMessage)
}

func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	teamID, err := handler.URLID(r, "id")
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	members, err := h.teams.Members(r.Context(), teamID)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	_ = jsonhttp.Write(w, http.StatusOK, MembersResponse{
		Members: members,
		Count:   len(members),
		TeamID:  teamID,
	})
}

func (h *Handler) memberParams(r *http.Request) (uint, uint, error) {
	teamID, err := handler.URLID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	userID, err := handler.URLID(r, "userId")
	if err != nil {
		return 0, 0, err
	}
	return teamID, userID, nil
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID, userID, err := h.memberParams(r)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.teams.AddMember(r.Context(), teamID, userID); err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, userID, err := h.memberParams(r)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.teams.RemoveMember(r.Context(), teamID, userID); err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	// Membership is already committed; eviction failures are only logged.
	if err := h.evictor.RemoveTeamMember(r.Context(), teamID, userID); err != nil {
		h.logger.Warnw("failed to evict removed team member",
			logging.Fields(logging.Realtime, logging.Publish, map[logging.ExtraKey]any{
				"team_id": teamID,
				"user_id": userID,
				"error":   err,
			})...,
		)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	caller, ok := handler.Caller(w, r)
	if !ok {
		return
	}
	teamID, err := handler.URLID(r, "id")
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			jsonhttp.WriteBadRequestError(w, "limit must be an integer")
			return
		}
	}

	messages, err := h.messages.List(r.Context(), caller, teamID, limit)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	_ = jsonhttp.Write(w, http.StatusOK, MessagesResponse{
		Messages: messages,
		Count:    len(messages),
		TeamID:   teamID,
	})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	caller, ok := handler.Caller(w, r)
	if !ok {
		return
	}
	teamID, err := handler.URLID(r, "id")
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	var req SendMessageRequest
	if err := jsonhttp.Read(w, r, &req); err != nil {
		jsonhttp.WriteValidationError(w, err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		jsonhttp.WriteValidationError(w, err)
		return
	}

	msg, err := h.messages.Send(r.Context(), caller, teamID, req.Message, req.MessageFile)
	if err != nil {
		handler.WriteError(w, r, h.logger, err)
		return
	}

	_ = jsonhttp.Write(w, http.StatusCreated, msg)
}
