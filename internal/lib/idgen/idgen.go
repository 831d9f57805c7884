// Package idgen предоставляет генератор уникальных идентификаторов пользователей.
package idgen

import "github.com/google/uuid"

// Generator описывает источник глобально уникальных идентификаторов.
// Идентификатор присваивается пользователю один раз при первой регистрации.
type Generator interface {
	Generate() string
}

// UUIDGenerator реализует Generator на основе случайных UUID.
type UUIDGenerator struct{}

// NewUUIDGenerator создает новый UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate возвращает новый случайный UUID в строковом виде.
func (g *UUIDGenerator) Generate() string {
	return uuid.NewString()
}
