package teams

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUseCase struct {
	sent []string
	err  error
}

func (f *fakeUseCase) Send(_ context.Context, caller security.Identity, teamID uint, text string, _ *string) (*domain.TeamMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, text)
	return &domain.TeamMessage{ID: uint(len(f.sent)), TeamID: teamID, UserID: caller.UserID, Message: text}, nil
}

func (f *fakeUseCase) List(_ context.Context, _ security.Identity, teamID uint, _ int) ([]domain.TeamMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.TeamMessage, 0, len(f.sent))
	for i, text := range f.sent {
		out = append(out, domain.TeamMessage{ID: uint(i + 1), TeamID: teamID, Message: text})
	}
	return out, nil
}

type fakeTeams struct {
	domain.TeamRepository
	added     [][2]uint
	removed   [][2]uint
	removeErr error
}

func (f *fakeTeams) AddMember(_ context.Context, teamID, userID uint) error {
	f.added = append(f.added, [2]uint{teamID, userID})
	return nil
}

func (f *fakeTeams) RemoveMember(_ context.Context, teamID, userID uint) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, [2]uint{teamID, userID})
	return nil
}

type fakeEvictor struct {
	evicted [][2]uint
	err     error
}

func (f *fakeEvictor) RemoveTeamMember(_ context.Context, teamID, userID uint) error {
	f.evicted = append(f.evicted, [2]uint{teamID, userID})
	return f.err
}

func newRouter(uc *fakeUseCase, teams *fakeTeams, withIdentity bool) http.Handler {
	return newRouterWith(uc, teams, &fakeEvictor{}, withIdentity)
}

func newRouterWith(uc *fakeUseCase, teams *fakeTeams, evictor *fakeEvictor, withIdentity bool) http.Handler {
	h := NewHandler(teams, uc, evictor, validate.New(), zap.NewNop().Sugar())
	r := chi.NewRouter()
	if withIdentity {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := security.WithIdentity(r.Context(), security.Identity{UserID: 7, Role: domain.RoleSales})
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
	}
	r.Route("/teams", func(r chi.Router) { h.Routes(r) })
	return r
}

func TestSendMessage(t *testing.T) {
	uc := &fakeUseCase{}
	r := newRouter(uc, &fakeTeams{}, true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/teams/42/messages", strings.NewReader(`{"message":"hello"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"team_id":42`)
	assert.Equal(t, []string{"hello"}, uc.sent)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teams/42/messages?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestSendMessageErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeUseCase{}, &fakeTeams{}, false).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/teams/42/messages", strings.NewReader(`{"message":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(&fakeUseCase{err: domain.ErrForbidden}, &fakeTeams{}, true).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/teams/42/messages", strings.NewReader(`{"message":"x"}`)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(&fakeUseCase{}, &fakeTeams{}, true).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/teams/42/messages", strings.NewReader(`{"message_file":"not a url"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddMember(t *testing.T) {
	teams := &fakeTeams{}
	rec := httptest.NewRecorder()
	newRouter(&fakeUseCase{}, teams, true).
		ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/teams/42/members/7", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, [][2]uint{{42, 7}}, teams.added)
}

func TestRemoveMemberEvictsLiveConnections(t *testing.T) {
	teams := &fakeTeams{}
	evictor := &fakeEvictor{}
	rec := httptest.NewRecorder()
	newRouterWith(&fakeUseCase{}, teams, evictor, true).
		ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/teams/42/members/7", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, [][2]uint{{42, 7}}, teams.removed)
	assert.Equal(t, [][2]uint{{42, 7}}, evictor.evicted)
}

func TestRemoveMemberEvictionFailureStillSucceeds(t *testing.T) {
	evictor := &fakeEvictor{err: errors.New("bus down")}
	rec := httptest.NewRecorder()
	newRouterWith(&fakeUseCase{}, &fakeTeams{}, evictor, true).
		ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/teams/42/members/7", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, evictor.evicted, 1)
}

func TestRemoveMemberFailureSkipsEviction(t *testing.T) {
	evictor := &fakeEvictor{}
	rec := httptest.NewRecorder()
	newRouterWith(&fakeUseCase{}, &fakeTeams{removeErr: domain.ErrNotFound}, evictor, true).
		ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/teams/42/members/7", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, evictor.evicted)
}
