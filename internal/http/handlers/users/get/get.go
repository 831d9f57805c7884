// Package get реализует HTTP-обработчик чтения пользователя по идентификатору.
package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/glebkarpov/identity-hub/internal/authctx"
	"github.com/glebkarpov/identity-hub/internal/http/response"
	"github.com/glebkarpov/identity-hub/internal/lib/sl"
	"github.com/glebkarpov/identity-hub/internal/models"
	userservice "github.com/glebkarpov/identity-hub/internal/services/user"
)

// Service определяет методы бизнес-логики для чтения пользователя по id.
type Service interface {
	GetUser(ctx context.Context, userUID string) (*models.UserView, error)
}

// Handler обрабатывает HTTP-запросы чтения пользователя по идентификатору.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Пользователь по идентификатору
// @Description Возвращает публичное представление активного пользователя
// @Tags Users
// @Produce  json
// @Param id path string true "Идентификатор пользователя"
// @Success 200 {object} response.OKResponse{data=models.UserView} "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Запрос без аутентификации"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден или деактивирован"
// @Failure 422 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.get"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// middleware пропускает запросы без валидного токена дальше,
	// поэтому требование аутентификации проверяется здесь
	if _, err := authctx.RequesterUID(r.Context()); err != nil {
		log.Warn("request is not authenticated")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("not authenticated"))
		return
	}

	userUID := chi.URLParam(r, "id")
	if err := h.validate.Var(userUID, "required,uuid"); err != nil {
		log.Warn("invalid user id", slog.String("id", userUID))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	view, err := h.service.GetUser(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, userservice.ErrUnknownOrInactiveUser) {
			log.Warn("user is unknown or inactive", slog.String("id", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("unknown or inactive user"))
			return
		}
		log.Error("failed to get user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get user"))
		return
	}

	render.JSON(w, r, response.OKWithData(view))
}
