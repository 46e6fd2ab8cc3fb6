package access

import (
	"context"
	"testing"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeams struct {
	domain.TeamRepository
	members map[uint][]uint
}

func (f *fakeTeams) GetByID(_ context.Context, id uint) (*domain.Team, error) {
	if _, ok := f.members[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Team{}, nil
}

func (f *fakeTeams) IsMember(_ context.Context, teamID, userID uint) (bool, error) {
	for _, id := range f.members[teamID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeClients struct {
	domain.Repository[domain.Client]
	ids map[uint]bool
}

func (f *fakeClients) GetByID(_ context.Context, id uint) (*domain.Client, error) {
	if !f.ids[id] {
		return nil, domain.ErrNotFound
	}
	return &domain.Client{}, nil
}

func TestRoomGuard(t *testing.T) {
	guard := NewRoomGuard(
		&fakeTeams{members: map[uint][]uint{42: {7}}},
		&fakeClients{ids: map[uint]bool{3: true}},
	)
	ctx := context.Background()
	member := ws.Identity{ID: "7", Role: domain.RoleSales}
	outsider := ws.Identity{ID: "9", Role: domain.RoleManager}
	admin := ws.Identity{ID: "1", Role: domain.RoleAdmin}

	tests := []struct {
		name     string
		identity ws.Identity
		room     string
		wantErr  error
	}{
		{name: "member joins team", identity: member, room: ws.TeamRoom("42")},
		{name: "admin joins any team", identity: admin, room: ws.TeamRoom("42")},
		{name: "outsider is refused", identity: outsider, room: ws.TeamRoom("42"), wantErr: domain.ErrForbidden},
		{name: "unknown team", identity: admin, room: ws.TeamRoom("5"), wantErr: domain.ErrNotFound},
		{name: "existing client", identity: outsider, room: ws.ClientRoom("3")},
		{name: "unknown client", identity: member, room: ws.ClientRoom("4"), wantErr: domain.ErrNotFound},
		{name: "malformed room", identity: member, room: "team:abc", wantErr: ws.ErrInvalidRoom},
		{name: "zero id", identity: member, room: "client:0", wantErr: ws.ErrInvalidRoom},
		{name: "unknown namespace", identity: member, room: "fleet:1", wantErr: ws.ErrInvalidRoom},
		{name: "non numeric identity", identity: ws.Identity{ID: "abc"}, room: ws.TeamRoom("42"), wantErr: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.CanJoin(ctx, tt.identity, tt.room)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
