package rabbitmq

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"
)

// ConsumeMessages подписывается на очередь и передает тело каждого сообщения
// в handler. Сообщение подтверждается только после успешной обработки.
func ConsumeMessages(ctx context.Context, ch *amqp.Channel, queue string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumeMessages"

	msgs, err := ch.Consume(
		queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				if err := handler(d.Body); err != nil {
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}
