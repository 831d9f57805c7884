// Package middlewarectx содержит HTTP middleware приложения.
//
// AuthMiddleware разбирает токен доступа из заголовка Authorization и в случае
// успеха привязывает идентификацию субъекта к контексту запроса. Запрос с
// отсутствующим, просроченным или испорченным токеном не отклоняется на этом
// уровне: он продолжает обработку без идентификации, и отказ возвращает уже
// операция, требующая аутентифицированного субъекта.
package middlewarectx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/glebkarpov/identity-hub/internal/authctx"
	"github.com/glebkarpov/identity-hub/internal/lib/jwt"
	"github.com/glebkarpov/identity-hub/internal/lib/sl"
)

// TokenParser описывает проверку токена доступа.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// AuthMiddleware возвращает HTTP middleware, разбирающий токен доступа
// из заголовка Authorization.
func AuthMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Warn("failed to parse access token",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := authctx.WithIdentity(r.Context(), authctx.Identity{
				UserUID: claims.UserUID,
				Roles:   claims.RoleList(),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
