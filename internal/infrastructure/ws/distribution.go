package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"go.uber.org/zap"
)

const (
	DriverNone     = "none"
	DriverRedis    = "redis"
	DriverRabbitMQ = "rabbitmq"
)

// Distributor replicates publishes across server instances. Events received
// from the medium are handed to the registered handler and must never be
// published back.
type Distributor interface {
	Name() string
	Distributed() bool
	PublishExternal(ctx context.Context, msg *WSMessage) error
	OnExternalEvent(handler func(*WSMessage))
	Close() error
}

// StateNotifier is implemented by distributors whose link to the medium can
// drop and recover at runtime.
type StateNotifier interface {
	OnStateChange(fn func(distributed bool))
}

type DistributionConfig struct {
	Driver         string
	Address        string
	Channel        string
	ConnectTimeout time.Duration
	RetryAttempts  int
	RetryInterval  time.Duration
}

// LocalDistributor is used in single-instance mode.
type LocalDistributor struct{}

func NewLocalDistributor() *LocalDistributor {
	return &LocalDistributor{}
}

func (*LocalDistributor) Name() string { return DriverNone }

func (*LocalDistributor) Distributed() bool { return false }

func (*LocalDistributor) PublishExternal(context.Context, *WSMessage) error { return nil }

func (*LocalDistributor) OnExternalEvent(func(*WSMessage)) {}

func (*LocalDistributor) Close() error { return nil }

// NewDistributor connects the configured medium. Connection failures are
// returned wrapped in ErrExternalMediumUnavailable.
func NewDistributor(ctx context.Context, cfg DistributionConfig, node string, logger *zap.SugaredLogger) (Distributor, error) {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	switch cfg.Driver {
	case "", DriverNone:
		return NewLocalDistributor(), nil
	case DriverRedis:
		return DialRedisDistributor(ctx, cfg, node, logger)
	case DriverRabbitMQ:
		return DialRabbitDistributor(ctx, cfg, node, logger)
	default:
		return nil, fmt.Errorf("unknown distribution driver %q", cfg.Driver)
	}
}

// SelectDistributor is NewDistributor that falls back to single-instance
// mode instead of failing.
func SelectDistributor(ctx context.Context, cfg DistributionConfig, node string, logger *zap.SugaredLogger) Distributor {
	d, err := NewDistributor(ctx, cfg, node, logger)
	if err != nil {
		logger.Warnw("distribution backend unavailable, running in single-instance mode",
			logging.KeyCategory, logging.Realtime,
			logging.KeySubCategory, logging.Startup,
			"driver", cfg.Driver,
			"address", cfg.Address,
			"error", err,
		)
		return NewLocalDistributor()
	}

	logger.Infow("realtime distribution ready",
		logging.KeyCategory, logging.Realtime,
		logging.KeySubCategory, logging.Startup,
		"driver", d.Name(),
		"node", node,
	)
	return d
}

// inbound decodes envelopes from the medium and drops those this node
// published itself.
type inbound struct {
	node   string
	logger *zap.SugaredLogger

	mu      sync.RWMutex
	handler func(*WSMessage)
}

func (in *inbound) OnExternalEvent(handler func(*WSMessage)) {
	in.mu.Lock()
	in.handler = handler
	in.mu.Unlock()
}

func (in *inbound) dispatch(raw []byte) {
	origin, msg, err := decodeEnvelope(raw)
	if err != nil {
		in.logger.Warnw("discarding malformed envelope",
			logging.KeyCategory, logging.Realtime,
			logging.KeySubCategory, logging.Subscribe,
			"error", err,
		)
		return
	}
	if origin == in.node {
		return
	}

	in.mu.RLock()
	handler := in.handler
	in.mu.RUnlock()

	if handler != nil {
		handler(msg)
	}
}
