// Package authctx хранит аутентифицированный субъект запроса в context.Context.
//
// Идентификация привязывается к контексту одного запроса middleware'ом после
// успешной проверки токена доступа и никогда не разделяется между запросами:
// каждый запрос несет собственное значение контекста вместо процессной
// глобальной переменной.
package authctx

import (
	"context"
	"errors"
)

// ErrNotAuthenticated возвращается, когда операция требует аутентифицированного
// субъекта, а идентификация к контексту запроса не привязана.
var ErrNotAuthenticated = errors.New("not authenticated")

type ctxKey struct{}

// Identity — аутентифицированный субъект запроса.
type Identity struct {
	UserUID string
	Roles   []string
}

// WithIdentity возвращает контекст с привязанной идентификацией.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity)
}

// FromContext возвращает идентификацию запроса, если она привязана.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(ctxKey{}).(Identity)
	return identity, ok
}

// RequesterUID возвращает идентификатор аутентифицированного субъекта
// или ErrNotAuthenticated.
func RequesterUID(ctx context.Context) (string, error) {
	identity, ok := FromContext(ctx)
	if !ok || identity.UserUID == "" {
		return "", ErrNotAuthenticated
	}
	return identity.UserUID, nil
}

// RequesterRoles возвращает роли аутентифицированного субъекта
// или ErrNotAuthenticated.
func RequesterRoles(ctx context.Context) ([]string, error) {
	identity, ok := FromContext(ctx)
	if !ok || identity.UserUID == "" {
		return nil, ErrNotAuthenticated
	}
	return identity.Roles, nil
}
