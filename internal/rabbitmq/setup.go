package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"

	"github.com/bookease/bookease-backend/internal/models"
)

// ExchangeNotifications direct-обменник событий подписки.
const ExchangeNotifications = "notifications"

// Очереди notification-sender.
const (
	QueueSubscriptionActivated = "notifications.subscription_activated"
	QueueSubscriptionExpired   = "notifications.subscription_expired"
)

// QueueConfig очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues очереди, которые слушает notification-sender.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueSubscriptionActivated, RoutingKey: models.EventSubscriptionActivated},
		{QueueName: QueueSubscriptionExpired, RoutingKey: models.EventSubscriptionExpired},
	}
}

// SetupChannel открывает канал, объявляет обменник и привязывает к нему очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		ExchangeNotifications,
		"direct",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: declare queue %s: %w", op, q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, ExchangeNotifications, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: bind queue %s to %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
