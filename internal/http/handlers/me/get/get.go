// Package get реализует HTTP-обработчик чтения профиля текущего пользователя.
package get

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
	"github.com/glebkarpov/identity-hub/internal/models"
	userservice "github.com/glebkarpov/identity-hub/internal/services/user"
)

// Service определяет методы бизнес-логики для чтения текущего пользователя.
type Service interface {
	GetMe(ctx context.Context) (*models.UserView, error)
}

// Handler обрабатывает HTTP-запросы чтения профиля текущего пользователя.
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
// @Summary Профиль текущего пользователя
// @Description Возвращает публичное представление аутентифицированного пользователя
// @Tags Me
// @Produce  json
// @Success 200 {object} response.OKResponse{data=models.UserView} "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Запрос без аутентификации"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден или деактивирован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.me.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	view, err := h.service.GetMe(r.Context())
	if err != nil {
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
			log.Error("failed to get current user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get current user"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(view))
}
