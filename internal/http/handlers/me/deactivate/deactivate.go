// Package deactivate реализует HTTP-обработчик деактивации текущего пользователя.
package deactivate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/glebkarpov/identity-hub/internal/authctx"
	"github.com/glebkarpov/identity-hub/internal/http/response"
	"github.com/glebkarpov/identity-hub/internal/lib/sl"
	userservice "github.com/glebkarpov/identity-hub/internal/services/user"
)

// Service определяет методы бизнес-логики для деактивации пользователя.
type Service interface {
	DeactivateMe(ctx context.Context) error
}

// Handler обрабатывает HTTP-запросы деактивации текущего пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Деактивация текущего пользователя
// @Description Переводит аутентифицированного пользователя в неактивное состояние
// @Tags Me
// @Produce  json
// @Success 200 {object} response.OKResponse "Пользователь деактивирован"
// @Failure 401 {object} response.ErrorResponse "Запрос без аутентификации"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден или деактивирован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /me [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.me.deactivate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.service.DeactivateMe(r.Context()); err != nil {
		switch {
		case errors.Is(err, authctx.ErrNotAuthenticated):
			log.Warn("request is not authenticated")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("not authenticated"))
		case errors.Is(err, userservice.ErrUnknownOrInactiveUser):
			log.Warn("user is unknown or inactive")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("unknown or inactive user"))
		default:
			log.Error("failed to deactivate user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to deactivate user"))
		}
		return
	}

	log.Info("user deactivated")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "user deactivated successfully",
	}))
}
