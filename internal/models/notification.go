package models

// VerificationMessage — сообщение для отправки кода подтверждения регистрации.
// Публикуется сервисом пользователей и потребляется сервисом отправки писем.
type VerificationMessage struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verification_code"`
}

// PasswordResetMessage — сообщение с временным паролем после сброса.
// Временный пароль передается получателю только этим сообщением и
// никогда не возвращается вызывающей стороне.
type PasswordResetMessage struct {
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporary_password"`
}
