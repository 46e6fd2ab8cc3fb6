package dependency

import (
	"context"

	"github.com/hilthontt/dealerdesk/internal/application/usecases/access"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/ws"
)

// wsIdentity exposes the authenticated request user to the supervisor.
func wsIdentity(ctx context.Context) (ws.Identity, bool) {
	id, ok := security.IdentityFromContext(ctx)
	if !ok {
		return ws.Identity{}, false
	}
	return ws.Identity{ID: id.Subject(), Role: id.Role, Name: id.Name}, true
}

func (c *Container) initWebSocket(ctx context.Context) {
	rt := c.Config.Realtime

	distributor := ws.SelectDistributor(ctx, ws.DistributionConfig{
		Driver:         rt.Distribution.Driver,
		Address:        rt.Distribution.Address,
		Channel:        rt.Distribution.Channel,
		ConnectTimeout: rt.Distribution.ConnectTimeout,
		RetryAttempts:  rt.Distribution.RetryAttempts,
		RetryInterval:  rt.Distribution.RetryInterval,
	}, c.NodeID, c.Logger)
	c.Metrics.SetDistributed(distributor.Distributed())
	if sn, ok := distributor.(ws.StateNotifier); ok {
		sn.OnStateChange(c.Metrics.SetDistributed)
	}

	c.WSRegistry = ws.NewRegistry()
	c.WSRooms = ws.NewRoomManager(c.WSRegistry,
		ws.WithDistributor(distributor),
		ws.WithObserver(c.Metrics),
		ws.WithLogger(c.Logger),
		ws.WithPublishTimeout(rt.Distribution.PublishTimeout),
	)
	c.WSBroadcaster = ws.NewBroadcaster(c.WSRooms)
	c.WSSupervisor = ws.NewSupervisor(ws.SupervisorConfig{
		HeartbeatInterval: rt.HeartbeatInterval,
		HeartbeatTimeout:  rt.HeartbeatTimeout,
		WriteWait:         rt.WriteWait,
		MaxMessageSize:    rt.MaxMessageSize,
		SendBuffer:        rt.SendBuffer,
		AllowedOrigins:    rt.AllowedOrigins,
	}, c.WSRooms, wsIdentity, access.NewRoomGuard(c.TeamRepo, c.ClientRepo))

	c.Logger.Infow("WebSocket components initialized successfully",
		logging.KeyCategory, logging.Realtime,
		logging.KeySubCategory, logging.Startup,
		"distribution", distributor.Name(),
		"distributed", distributor.Distributed(),
	)
}
