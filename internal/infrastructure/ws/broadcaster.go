package ws

import (
	"context"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Publisher is the fan-out side of the RoomManager.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload any) error
	Evict(ctx context.Context, room, identityID string) error
}

// Broadcaster maps committed domain changes onto room events.
type Broadcaster struct {
	rooms  Publisher
	tracer trace.Tracer
}

func NewBroadcaster(rooms Publisher) *Broadcaster {
	return &Broadcaster{
		rooms:  rooms,
		tracer: otel.Tracer("dealerdesk/realtime"),
	}
}

// BroadcastTeamMessage must only be called once msg is persisted. The
// payload is the full stored record including the sender's display fields.
func (b *Broadcaster) BroadcastTeamMessage(ctx context.Context, teamID uint, msg *domain.TeamMessage) error {
	return b.publish(ctx, TeamRoom(roomID(teamID)), TeamMessage, msg)
}

func (b *Broadcaster) BroadcastClientActivity(ctx context.Context, clientID uint, kind string, record any) error {
	return b.publish(ctx, ClientRoom(roomID(clientID)), ClientActivity, ActivityPayload{
		Kind:   kind,
		Record: record,
	})
}

// RemoveTeamMember drops the user's live connections from the team room so
// they stop receiving team messages once their membership is revoked.
func (b *Broadcaster) RemoveTeamMember(ctx context.Context, teamID, userID uint) error {
	room := TeamRoom(roomID(teamID))

	ctx, span := b.tracer.Start(ctx, "realtime.evict", trace.WithAttributes(
		attribute.String("realtime.room", room),
	))
	defer span.End()

	if err := b.rooms.Evict(ctx, room, roomID(userID)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (b *Broadcaster) publish(ctx context.Context, room, event string, payload any) error {
	ctx, span := b.tracer.Start(ctx, "realtime.publish", trace.WithAttributes(
		attribute.String("realtime.room", room),
		attribute.String("realtime.event", event),
	))
	defer span.End()

	if err := b.rooms.Publish(ctx, room, event, payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
