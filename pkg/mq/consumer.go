package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"forumhelper/pkg/metrics"
	"forumhelper/pkg/otel"
	"forumhelper/pkg/util"
)

type MessageHandler func(ctx context.Context, data json.RawMessage) error

// Consumer reads one queue bound to several routing keys and dispatches
// each delivery to the handler registered for its routing key.
type Consumer struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	queue    string
	handlers map[string]MessageHandler
	logger   *zap.Logger
}

// NewConsumer declares the exchange and a durable queue bound to routingKeys.
func NewConsumer(url, queueName string, routingKeys []string, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queue, err := DeclareTopology(ch, queueName, routingKeys)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("Consumer initialized",
		zap.Strings("routing_keys", routingKeys),
		zap.String("queue", queue),
		zap.String("exchange", ExchangeName),
	)

	return &Consumer{
		conn:     conn,
		channel:  ch,
		queue:    queue,
		handlers: make(map[string]MessageHandler),
		logger:   logger,
	}, nil
}

// Handle registers h for routingKey.
func (c *Consumer) Handle(routingKey string, h MessageHandler) {
	c.handlers[routingKey] = h
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming blocks until ctx is cancelled or the delivery channel
// closes.
func (c *Consumer) StartConsuming(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		"",
		false, // 手动ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.process(ctx, msg)
		}
	}
}

// process 保证每条消息都会被 ack 或 nack
func (c *Consumer) process(ctx context.Context, msg amqp091.Delivery) {
	start := time.Now()
	ctx, span := otel.MQConsumeSpan(ctx, msg.Headers, msg.RoutingKey, c.queue)
	defer func() {
		span.End()
		metrics.RecordMQConsumeLatency(msg.RoutingKey, c.queue, time.Since(start))
	}()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Handler panic recovered",
				zap.String("routing_key", msg.RoutingKey),
				zap.Any("panic", r),
			)
			// panic 不重试，避免毒消息反复崩溃
			if err := msg.Nack(false, false); err != nil {
				c.logger.Error("Failed to nack message after panic", zap.Error(err))
			}
		}
	}()

	h, ok := c.handlers[msg.RoutingKey]
	if !ok {
		c.logger.Warn("No handler for routing key, dropping", zap.String("routing_key", msg.RoutingKey))
		_ = msg.Ack(false)
		return
	}

	if err := h(ctx, msg.Body); err != nil {
		span.RecordError(err)
		retryable, errType := util.IsRetryableError(err)
		c.logger.Error("Handler error",
			zap.String("routing_key", msg.RoutingKey),
			zap.String("error_type", errType),
			zap.Bool("requeue", retryable && !msg.Redelivered),
			zap.Error(err),
		)
		// 只重试一次：已经重投过的消息直接丢弃
		if err := msg.Nack(false, retryable && !msg.Redelivered); err != nil {
			c.logger.Error("Failed to nack message", zap.Error(err))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("Failed to ack message", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
	}
}
