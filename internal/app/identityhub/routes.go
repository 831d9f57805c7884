package identityhub

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/glebkarpov/identity-hub/internal/http/handlers/auth/activate"
	"github.com/glebkarpov/identity-hub/internal/http/handlers/auth/register"
	"github.com/glebkarpov/identity-hub/internal/http/handlers/auth/resetpassword"
	"github.com/glebkarpov/identity-hub/internal/http/handlers/auth/signin"
	medeactivate "github.com/glebkarpov/identity-hub/internal/http/handlers/me/deactivate"
	meget "github.com/glebkarpov/identity-hub/internal/http/handlers/me/get"
	meupdate "github.com/glebkarpov/identity-hub/internal/http/handlers/me/update"
	usersget "github.com/glebkarpov/identity-hub/internal/http/handlers/users/get"
	"github.com/glebkarpov/identity-hub/internal/http/middlewarectx"
	userservice "github.com/glebkarpov/identity-hub/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, service *userservice.Service, tokenParser middlewarectx.TokenParser) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/registration/step-1", register.New(logger, service).ServeHTTP)
		r.Post("/auth/registration/step-2", activate.New(logger, service).ServeHTTP)
		r.Post("/auth/sign-in", signin.New(logger, service).ServeHTTP)
		r.Post("/auth/reset-password", resetpassword.New(logger, service).ServeHTTP)

		// Группа с разбором токена доступа
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(tokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, rate.Limit(10), 20))
			r.Get("/me", meget.New(logger, service).ServeHTTP)
			r.Put("/me", meupdate.New(logger, service).ServeHTTP)
			r.Delete("/me", medeactivate.New(logger, service).ServeHTTP)
			r.Get("/users/{id}", usersget.New(logger, service).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
