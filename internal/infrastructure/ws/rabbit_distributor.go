package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const defaultRabbitExchange = "dealerdesk.realtime"

// RabbitDistributor fans events out through a fanout exchange; every
// instance consumes from its own exclusive queue. A lost connection is
// re-established in the background while publishes fail fast.
type RabbitDistributor struct {
	inbound

	uri           string
	exchange      string
	retryInterval time.Duration

	mu      sync.RWMutex
	rmq     *messaging.RabbitMQ
	onState func(bool)

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func DialRabbitDistributor(ctx context.Context, cfg DistributionConfig, node string, logger *zap.SugaredLogger) (*RabbitDistributor, error) {
	rmq, err := messaging.ConnectRabbitMQ(ctx, messaging.RabbitMQConfig{
		URI:           cfg.Address,
		RetryAttempts: cfg.RetryAttempts,
		RetryInterval: cfg.RetryInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalMediumUnavailable, err)
	}

	exchange := cfg.Channel
	if exchange == "" {
		exchange = defaultRabbitExchange
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	d := &RabbitDistributor{
		inbound:       inbound{node: node, logger: logger},
		uri:           cfg.Address,
		exchange:      exchange,
		retryInterval: interval,
		done:          make(chan struct{}),
	}

	if err := d.attach(rmq); err != nil {
		rmq.Close()
		return nil, fmt.Errorf("%w: %w", ErrExternalMediumUnavailable, err)
	}

	return d, nil
}

func (d *RabbitDistributor) attach(rmq *messaging.RabbitMQ) error {
	queue, err := rmq.DeclareFanout(d.exchange)
	if err != nil {
		return err
	}

	deliveries, err := rmq.Consume(queue)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queue, err)
	}
	connClosed := rmq.NotifyClose()
	chanClosed := rmq.NotifyChannelClose()
	consumerDone := make(chan struct{})

	d.mu.Lock()
	select {
	case <-d.done:
		d.mu.Unlock()
		return fmt.Errorf("rabbitmq distributor closed")
	default:
	}
	d.rmq = rmq
	d.wg.Add(2)
	d.mu.Unlock()

	d.setState(true)

	go d.consume(deliveries, consumerDone)
	go d.watch(rmq, connClosed, chanClosed, consumerDone)

	return nil
}

func (d *RabbitDistributor) consume(deliveries <-chan amqp.Delivery, stopped chan<- struct{}) {
	defer d.wg.Done()
	defer close(stopped)

	for dlv := range deliveries {
		d.dispatch(dlv.Body)
	}
}

// watch waits for the first sign that rmq is unusable: a connection close,
// a channel close, or the delivery stream ending. Any of them detaches rmq
// and starts reconnecting unless the distributor is shutting down.
func (d *RabbitDistributor) watch(rmq *messaging.RabbitMQ, connClosed, chanClosed <-chan *amqp.Error, consumerDone <-chan struct{}) {
	defer d.wg.Done()

	var (
		cause  string
		reason *amqp.Error
	)
	select {
	case <-d.done:
		return
	case reason = <-connClosed:
		cause = "connection closed"
	case reason = <-chanClosed:
		cause = "channel closed"
	case <-consumerDone:
		cause = "deliveries stopped"
	}

	select {
	case <-d.done:
		return
	default:
	}

	fields := []any{
		logging.KeyCategory, logging.RabbitMQ,
		logging.KeySubCategory, logging.Reconnect,
		"cause", cause,
	}
	if reason != nil {
		fields = append(fields, "error", reason)
	}
	d.logger.Warnw("rabbitmq connection lost, reconnecting", fields...)

	d.detach(rmq)
	d.reconnect()
}

// detach drops rmq if it is still the active link.
func (d *RabbitDistributor) detach(rmq *messaging.RabbitMQ) {
	d.mu.Lock()
	if d.rmq != rmq {
		d.mu.Unlock()
		return
	}
	d.rmq = nil
	d.mu.Unlock()

	rmq.Close()
	d.setState(false)
}

// OnStateChange registers fn to be told whenever the distributor attaches
// to or detaches from the broker.
func (d *RabbitDistributor) OnStateChange(fn func(distributed bool)) {
	d.mu.Lock()
	d.onState = fn
	d.mu.Unlock()
}

func (d *RabbitDistributor) setState(distributed bool) {
	d.mu.RLock()
	fn := d.onState
	d.mu.RUnlock()

	if fn != nil {
		fn(distributed)
	}
}

func (d *RabbitDistributor) reconnect() {
	for attempt := 1; ; attempt++ {
		select {
		case <-d.done:
			return
		case <-time.After(d.retryInterval):
		}

		rmq, err := messaging.NewRabbitMQ(d.uri)
		if err != nil {
			d.logger.Warnw("rabbitmq reconnect failed",
				logging.KeyCategory, logging.RabbitMQ,
				logging.KeySubCategory, logging.Reconnect,
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		if err := d.attach(rmq); err != nil {
			rmq.Close()
			d.logger.Warnw("rabbitmq reattach failed",
				logging.KeyCategory, logging.RabbitMQ,
				logging.KeySubCategory, logging.Reconnect,
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		d.logger.Infow("rabbitmq connection restored",
			logging.KeyCategory, logging.RabbitMQ,
			logging.KeySubCategory, logging.Reconnect,
			"attempt", attempt,
		)
		return
	}
}

func (*RabbitDistributor) Name() string { return DriverRabbitMQ }

// Distributed is false while the broker link is down.
func (d *RabbitDistributor) Distributed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.rmq != nil
}

func (d *RabbitDistributor) PublishExternal(ctx context.Context, msg *WSMessage) error {
	d.mu.RLock()
	rmq := d.rmq
	d.mu.RUnlock()

	if rmq == nil || rmq.IsClosed() {
		return ErrExternalMediumUnavailable
	}

	payload, err := encodeEnvelope(d.node, msg)
	if err != nil {
		return err
	}

	if err := rmq.Publish(ctx, d.exchange, payload); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func (d *RabbitDistributor) Close() error {
	d.closeOnce.Do(func() {
		close(d.done)

		d.mu.Lock()
		if d.rmq != nil {
			d.rmq.Close()
			d.rmq = nil
		}
		d.mu.Unlock()

		d.wg.Wait()

		d.logger.Infow("rabbitmq distributor closed",
			logging.KeyCategory, logging.RabbitMQ,
			logging.KeySubCategory, logging.Shutdown,
		)
	})
	return nil
}
