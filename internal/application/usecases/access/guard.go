package access

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/ws"
)

// RoomGuard decides who may subscribe to which realtime room. Team rooms
// are restricted to members and admins; client rooms only require the
// client to exist.
type RoomGuard struct {
	teams   domain.TeamRepository
	clients domain.Repository[domain.Client]
}

func NewRoomGuard(teams domain.TeamRepository, clients domain.Repository[domain.Client]) *RoomGuard {
	return &RoomGuard{teams: teams, clients: clients}
}

func (g *RoomGuard) CanJoin(ctx context.Context, identity ws.Identity, room string) error {
	namespace, rawID, err := ws.ParseRoom(room)
	if err != nil {
		return err
	}

	entityID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || entityID == 0 {
		return fmt.Errorf("%w: %s", ws.ErrInvalidRoom, room)
	}

	switch namespace {
	case ws.NamespaceTeam:
		if _, err := g.teams.GetByID(ctx, uint(entityID)); err != nil {
			return err
		}
		if identity.Role == domain.RoleAdmin {
			return nil
		}

		userID, err := strconv.ParseUint(identity.ID, 10, 64)
		if err != nil {
			return domain.ErrForbidden
		}
		ok, err := g.teams.IsMember(ctx, uint(entityID), uint(userID))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: not a member of team %d", domain.ErrForbidden, entityID)
		}
		return nil
	default:
		_, err := g.clients.GetByID(ctx, uint(entityID))
		return err
	}
}
