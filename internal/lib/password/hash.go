// Package password реализует функции для безопасного хеширования и проверки паролей,
// а также генерацию кода подтверждения регистрации и временного пароля.
//
// Hasher создает bcrypt-хеш пароля для безопасного хранения, стоимость
// хеширования настраивается через конфигурацию. Compare сравнивает
// сохраненный bcrypt-хеш с введенным паролем.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher хеширует пароли с заданной стоимостью bcrypt.
type Hasher struct {
	cost int
}

// NewHasher создает Hasher с указанной стоимостью bcrypt.
// Нулевая или отрицательная стоимость заменяется на bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
// Каждый вызов возвращает разные хэши за счет встроенной соли,
// но все они проходят проверку Compare с исходным паролем.
func (h *Hasher) Hash(password string) (string, error) {
	const op = "password.Hash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// Compare сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе — ошибку.
func (h *Hasher) Compare(originalHash, externalPassword string) error {
	const op = "password.Compare"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
