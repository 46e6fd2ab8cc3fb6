package activity

import (
	"context"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"go.uber.org/zap"
)

type Broadcaster interface {
	BroadcastClientActivity(ctx context.Context, clientID uint, kind string, record any) error
}

// Notifier pushes committed timeline records to the client's room.
type Notifier struct {
	broadcaster Broadcaster
	logger      *zap.SugaredLogger
}

func NewNotifier(broadcaster Broadcaster, logger *zap.SugaredLogger) *Notifier {
	return &Notifier{broadcaster: broadcaster, logger: logger}
}

func (n *Notifier) Created(ctx context.Context, record domain.ClientActivity) {
	if err := n.broadcaster.BroadcastClientActivity(ctx, record.GetClientID(), record.ActivityKind(), record); err != nil {
		n.logger.Warnw("failed to broadcast client activity",
			logging.KeyCategory, logging.Realtime,
			logging.KeySubCategory, logging.Publish,
			"client_id", record.GetClientID(),
			"kind", record.ActivityKind(),
			"error", err,
		)
	}
}
