package user

import "errors"

// Ошибки бизнес-уровня жизненного цикла пользователя. Обработчики HTTP
// сопоставляют их со статусами ответов.
var (
	// ErrDuplicateActiveUser — email уже занят активным пользователем.
	ErrDuplicateActiveUser = errors.New("active user with this email already exists")

	// ErrUnknownEmail — по email не найден подходящий пользователь.
	ErrUnknownEmail = errors.New("unknown email")

	// ErrInvalidVerificationCode — код подтверждения не совпадает или уже погашен.
	ErrInvalidVerificationCode = errors.New("invalid verification code")

	// ErrInvalidCredentials — пара email/пароль не подходит ни к одному
	// активному пользователю. Неизвестный email и неверный пароль
	// неразличимы снаружи.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownOrInactiveUser — пользователь не найден или деактивирован.
	ErrUnknownOrInactiveUser = errors.New("unknown or inactive user")
)
