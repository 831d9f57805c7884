package rabbitmq

import "github.com/streadway/amqp"

// NotificationExchange — обменник для писем пользователям.
const NotificationExchange = "user.notifications"

// Маршрутные ключи и очереди уведомлений.
const (
	VerificationRoutingKey  = "verification"
	PasswordResetRoutingKey = "password-reset"

	VerificationQueue  = "notification.verification"
	PasswordResetQueue = "notification.password-reset"
)

// QueueConfig связывает очередь с маршрутным ключом.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди уведомлений сервиса.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: VerificationQueue, RoutingKey: VerificationRoutingKey},
		{QueueName: PasswordResetQueue, RoutingKey: PasswordResetRoutingKey},
	}
}

// SetupChannel открывает канал, объявляет обменник и очереди уведомлений
// и привязывает их по маршрутным ключам.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		NotificationExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return nil, err
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return nil, err
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, NotificationExchange, false, nil); err != nil {
			return nil, err
		}
	}

	return ch, nil
}
