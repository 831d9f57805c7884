// Package notifier определяет контракт доставки уведомлений пользователю
// и его реализацию поверх брокера сообщений.
package notifier

import "context"

// Notifier доставляет пользователю письма с кодом подтверждения регистрации
// и временным паролем. Доставка выполняется вне запроса: сообщение
// публикуется в брокер, а отправкой занимается отдельный сервис.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendTemporaryPassword(ctx context.Context, email, tempPassword string) error
}
