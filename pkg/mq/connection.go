package mq

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName 用户相关事件由论坛应用发布到此 exchange
	ExchangeName = "forum.events"
	exchangeKind = amqp091.ExchangeTopic

	connectionName = "forumhelper"
)

// NewConnection dials RabbitMQ and names the connection so it shows up as
// forumhelper in the management UI.
func NewConnection(url string) (*amqp091.Connection, error) {
	props := amqp091.NewConnectionProperties()
	props.SetClientConnectionName(connectionName)

	conn, err := amqp091.DialConfig(url, amqp091.Config{Properties: props})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// topologyChannel is the subset of *amqp091.Channel used to declare the
// invalidation topology.
type topologyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
}

// DeclareTopology declares the forum events exchange and a durable queue
// bound to each routing key. It returns the queue name.
func DeclareTopology(ch topologyChannel, queueName string, routingKeys []string) (string, error) {
	if len(routingKeys) == 0 {
		return "", fmt.Errorf("queue %s: no routing keys to bind", queueName)
	}

	if err := ch.ExchangeDeclare(
		ExchangeName,
		exchangeKind,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return "", fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range routingKeys {
		if err := ch.QueueBind(q.Name, key, ExchangeName, false, nil); err != nil {
			return "", fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}
	return q.Name, nil
}
