package ws

import (
	"context"
	"fmt"
	"sync"

	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/messaging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRedisChannel = "dealerdesk:realtime"

// RedisDistributor fans events out over a Redis pub/sub channel. Redis
// delivers a publisher's own messages back to it; the origin check in
// inbound filters them. go-redis resubscribes on its own after a dropped
// connection.
type RedisDistributor struct {
	inbound

	client  *redis.Client
	pubsub  *redis.PubSub
	channel string

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func DialRedisDistributor(ctx context.Context, cfg DistributionConfig, node string, logger *zap.SugaredLogger) (*RedisDistributor, error) {
	client, err := messaging.ConnectRedis(ctx, messaging.RedisConfig{
		ConnectionURL:  cfg.Address,
		RetryAttempts:  cfg.RetryAttempts,
		RetryInterval:  cfg.RetryInterval,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalMediumUnavailable, err)
	}

	d, err := NewRedisDistributor(ctx, client, cfg.Channel, node, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return d, nil
}

// NewRedisDistributor subscribes on an already connected client and takes
// ownership of it.
func NewRedisDistributor(ctx context.Context, client *redis.Client, channel, node string, logger *zap.SugaredLogger) (*RedisDistributor, error) {
	if channel == "" {
		channel = defaultRedisChannel
	}

	ps := client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("%w: subscribe %s: %w", ErrExternalMediumUnavailable, channel, err)
	}

	d := &RedisDistributor{
		inbound: inbound{node: node, logger: logger},
		client:  client,
		pubsub:  ps,
		channel: channel,
	}

	d.wg.Add(1)
	go d.consume(ps.Channel())

	return d, nil
}

func (d *RedisDistributor) consume(messages <-chan *redis.Message) {
	defer d.wg.Done()

	for m := range messages {
		d.dispatch([]byte(m.Payload))
	}
}

func (*RedisDistributor) Name() string { return DriverRedis }

func (*RedisDistributor) Distributed() bool { return true }

func (d *RedisDistributor) PublishExternal(ctx context.Context, msg *WSMessage) error {
	payload, err := encodeEnvelope(d.node, msg)
	if err != nil {
		return err
	}

	if err := d.client.Publish(ctx, d.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (d *RedisDistributor) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if cerr := d.pubsub.Close(); cerr != nil {
			err = cerr
		}
		d.wg.Wait()

		if cerr := d.client.Close(); cerr != nil && err == nil {
			err = cerr
		}

		d.logger.Infow("redis distributor closed",
			logging.KeyCategory, logging.Redis,
			logging.KeySubCategory, logging.Shutdown,
		)
	})
	return err
}
