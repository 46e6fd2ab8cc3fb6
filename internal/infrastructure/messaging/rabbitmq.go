package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQConfig struct {
	URI           string
	RetryAttempts int
	RetryInterval time.Duration
}

type RabbitMQ struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

func NewRabbitMQ(uri string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	return &RabbitMQ{
		conn:    conn,
		Channel: ch,
	}, nil
}

// ConnectRabbitMQ dials with the same retry policy as ConnectRedis.
func ConnectRabbitMQ(ctx context.Context, cfg RabbitMQConfig) (*RabbitMQ, error) {
	if cfg.URI == "" {
		return nil, ErrEmptyConnectionURL
	}

	var rmq *RabbitMQ
	err := retry(ctx, cfg.RetryAttempts, cfg.RetryInterval, func(context.Context) error {
		var err error
		rmq, err = NewRabbitMQ(cfg.URI)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRabbitMQNotReady, err)
	}

	return rmq, nil
}

// NotifyClose reports the connection-level close reason. The channel is
// closed by the library without a value on a graceful Close.
func (r *RabbitMQ) NotifyClose() <-chan *amqp.Error {
	return r.conn.NotifyClose(make(chan *amqp.Error, 1))
}

// NotifyChannelClose reports channel-level closes, such as a broker
// cancelling the channel on a protocol error while the connection survives.
func (r *RabbitMQ) NotifyChannelClose() <-chan *amqp.Error {
	return r.Channel.NotifyClose(make(chan *amqp.Error, 1))
}

// IsClosed is true once either the connection or the channel is gone.
func (r *RabbitMQ) IsClosed() bool {
	return r.conn == nil || r.conn.IsClosed() ||
		r.Channel == nil || r.Channel.IsClosed()
}

// DeclareFanout declares a durable fanout exchange and binds a fresh
// exclusive queue to it, returning the queue name.
func (r *RabbitMQ) DeclareFanout(exchange string) (string, error) {
	if err := r.Channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return "", fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	q, err := r.Channel.QueueDeclare(
		"",    // name, server generated
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return "", fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := r.Channel.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return "", fmt.Errorf("failed to bind queue to %s: %w", exchange, err)
	}

	return q.Name, nil
}

func (r *RabbitMQ) Publish(ctx context.Context, exchange string, body []byte) error {
	return r.Channel.PublishWithContext(ctx,
		exchange, // exchange
		"",       // routing key
		false,    // mandatory
		false,    // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (r *RabbitMQ) Consume(queue string) (<-chan amqp.Delivery, error) {
	return r.Channel.Consume(
		queue, // queue
		"",    // consumer
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		r.Channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}
