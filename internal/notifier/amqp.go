package notifier

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/glebkarpov/identity-hub/internal/lib/rabbitmq"
	"github.com/glebkarpov/identity-hub/internal/models"
)

// AMQPNotifier публикует уведомления в обменник RabbitMQ.
type AMQPNotifier struct {
	ch       *amqp.Channel
	exchange string
}

// NewAMQPNotifier создает AMQPNotifier поверх открытого канала.
func NewAMQPNotifier(ch *amqp.Channel, exchange string) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, exchange: exchange}
}

// SendVerificationCode публикует сообщение с кодом подтверждения регистрации.
func (n *AMQPNotifier) SendVerificationCode(_ context.Context, email, code string) error {
	const op = "notifier.SendVerificationCode"
	message := models.VerificationMessage{
		Email:            email,
		VerificationCode: code,
	}
	if err := rabbitmq.PublishMessage(n.ch, n.exchange, rabbitmq.VerificationRoutingKey, message); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendTemporaryPassword публикует сообщение с временным паролем.
func (n *AMQPNotifier) SendTemporaryPassword(_ context.Context, email, tempPassword string) error {
	const op = "notifier.SendTemporaryPassword"
	message := models.PasswordResetMessage{
		Email:             email,
		TemporaryPassword: tempPassword,
	}
	if err := rabbitmq.PublishMessage(n.ch, n.exchange, rabbitmq.PasswordResetRoutingKey, message); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
