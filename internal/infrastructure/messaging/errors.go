package messaging

import "errors"

var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty connection URL")
	ErrRabbitMQNotReady             = errors.New("rabbitmq did not become ready within the given time period")
)
