package password

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

const (
	verificationCodeMax  = 10000
	temporaryPasswordLen = 18
)

// GenerateVerificationCode возвращает случайный четырёхзначный цифровой код
// с ведущими нулями. Совпадение кодов между вызовами допустимо: код живет
// недолго и проверяется только в паре с конкретным email.
func GenerateVerificationCode() (string, error) {
	const op = "password.GenerateVerificationCode"
	n, err := rand.Int(rand.Reader, big.NewInt(verificationCodeMax))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// GenerateTemporaryPassword возвращает криптографически случайный одноразовый
// пароль для сброса. Значение никак не выводится из данных пользователя.
func GenerateTemporaryPassword() (string, error) {
	const op = "password.GenerateTemporaryPassword"
	buf := make([]byte, temporaryPasswordLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
