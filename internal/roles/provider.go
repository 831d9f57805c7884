// Package roles предоставляет источник ролей пользователя по его идентификатору.
package roles

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRole — роль, присваиваемая пользователю без явно назначенных ролей.
const DefaultRole = "user"

const rolesKeyPrefix = "user_roles:"

// Provider описывает источник ролей пользователя. Чистая выборка без мутаций.
type Provider interface {
	RolesFor(ctx context.Context, userUID string) ([]string, error)
}

// RedisProvider читает набор ролей пользователя из Redis.
type RedisProvider struct {
	db *redis.Client
}

// NewRedisProvider создает RedisProvider поверх существующего клиента.
func NewRedisProvider(db *redis.Client) *RedisProvider {
	return &RedisProvider{db: db}
}

// RolesFor возвращает роли пользователя. Пользователь без назначенных
// ролей получает DefaultRole.
func (p *RedisProvider) RolesFor(ctx context.Context, userUID string) ([]string, error) {
	const op = "roles.RolesFor"
	members, err := p.db.SMembers(ctx, rolesKeyPrefix+userUID).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(members) == 0 {
		return []string{DefaultRole}, nil
	}
	return members, nil
}
