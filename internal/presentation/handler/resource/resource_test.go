package resource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/dealerdesk/internal/domain"
	jsonhttp "github.com/hilthontt/dealerdesk/internal/infrastructure/json"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/validate"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tagInput struct {
	Name  string `json:"name" validate:"required,max=60"`
	Color string `json:"color" validate:"omitempty,hexcolor6"`
}

func (in *tagInput) Apply(t *domain.Tag, _ security.Identity) {
	t.Name = in.Name
	t.Color = in.Color
}

type memoryRepo struct {
	mu    sync.Mutex
	items map[uint]domain.Tag
	next  uint
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uint]domain.Tag{}}
}

func (m *memoryRepo) Create(_ context.Context, t *domain.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Name == t.Name {
			return domain.ErrConflict
		}
	}
	m.next++
	t.ID = m.next
	m.items[t.ID] = *t
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id uint) (*domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memoryRepo) Update(_ context.Context, t *domain.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[t.ID] = *t
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRepo) List(_ context.Context, q domain.ListQuery) ([]domain.Tag, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Tag, 0, len(m.items))
	for id := uint(1); id <= m.next; id++ {
		t, ok := m.items[id]
		if !ok {
			continue
		}
		if name, ok := q.Filters["name"]; ok && t.Name != name {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

type fixture struct {
	repo    *memoryRepo
	created []domain.Tag
	server  http.Handler
}

func newFixture(t *testing.T, opts Options[domain.Tag]) *fixture {
	t.Helper()
	f := &fixture{repo: newMemoryRepo()}

	opts.Filters = map[string]handler.FilterKind{"name": handler.FilterString}
	opts.AfterCreate = func(_ context.Context, tag *domain.Tag) {
		f.created = append(f.created, *tag)
	}
	h := NewHandler[domain.Tag, tagInput](f.repo, validate.New(), zap.NewNop().Sugar(), opts)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := security.WithIdentity(r.Context(), security.Identity{UserID: 1, Role: domain.RoleSales})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.Route("/tags", h.Routes)
	f.server = r
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t, Options[domain.Tag]{})

	rec := f.do(http.MethodPost, "/tags", `{"name":"vip","color":"#ff0000"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, uint(1), created.ID)
	require.Len(t, f.created, 1)
	assert.Equal(t, "vip", f.created[0].Name)

	rec = f.do(http.MethodGet, "/tags/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"vip"`)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, Options[domain.Tag]{})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"color":"#ff0000"}`},
		{name: "bad color", body: `{"name":"vip","color":"red"}`},
		{name: "unknown field", body: `{"name":"vip","priority":1}`},
		{name: "empty body", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/tags", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, f.created, "rejected input never reaches AfterCreate")
}

func TestCreateConflict(t *testing.T) {
	f := newFixture(t, Options[domain.Tag]{})

	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/tags", `{"name":"vip"}`).Code)
	rec := f.do(http.MethodPost, "/tags", `{"name":"vip"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, f.created, 1)
}

func TestCheckRejectsBeforeWrite(t *testing.T) {
	f := newFixture(t, Options[domain.Tag]{
		Check: func(context.Context, *domain.Tag) error {
			return errors.Join(domain.ErrInvalidInput, errors.New("client 9 does not exist"))
		},
	})

	rec := f.do(http.MethodPost, "/tags", `{"name":"vip"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.repo.items)
}

func TestListUpdateDelete(t *testing.T) {
	f := newFixture(t, Options[domain.Tag]{})
	f.do(http.MethodPost, "/tags", `{"name":"vip"}`)
	f.do(http.MethodPost, "/tags", `{"name":"fleet"}`)

	rec := f.do(http.MethodGet, "/tags?name=fleet&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page jsonhttp.Page[domain.Tag]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 10, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "fleet", page.Items[0].Name)

	rec = f.do(http.MethodPut, "/tags/2", `{"name":"fleet-accounts","color":"#00ff00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fleet-accounts", f.repo.items[2].Name)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/tags/2", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/tags/2", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/tags/2", "").Code)
}

func TestBadIDAndPaging(t *testing.T) {
	f := newFixture(t, Options[domain.Tag]{})

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/tags/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/tags/0", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/tags?limit=-1", "").Code)
}

func TestDeleteMiddleware(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}
	f := newFixture(t, Options[domain.Tag]{DeleteMiddleware: []func(http.Handler) http.Handler{deny}})
	f.do(http.MethodPost, "/tags", `{"name":"vip"}`)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/tags/1", "").Code)
	assert.Len(t, f.repo.items, 1)
}
