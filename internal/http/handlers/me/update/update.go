// Package update реализует HTTP-обработчик обновления профиля текущего пользователя.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/glebkarpov/identity-hub/internal/authctx"
	"github.com/glebkarpov/identity-hub/internal/http/response"
	"github.com/glebkarpov/identity-hub/internal/lib/sl"
	"github.com/glebkarpov/identity-hub/internal/models"
	userservice "github.com/glebkarpov/identity-hub/internal/services/user"
)

// Request — входные данные полного обновления профиля. Профильные поля
// заменяются целиком; пустой password оставляет пароль без изменений.
type Request struct {
	Password    string `json:"password" validate:"omitempty,min=6"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CountryCode string `json:"country_code" validate:"omitempty,len=2"`
	City        string `json:"city"`
}

// Service определяет методы бизнес-логики для обновления профиля.
type Service interface {
	UpdateMe(ctx context.Context, entry models.UpdateUserEntry) (*models.UserView, error)
}

// Handler обрабатывает HTTP-запросы обновления профиля.
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
// @Summary Обновление профиля текущего пользователя
// @Description Целиком заменяет профиль аутентифицированного пользователя
// @Tags Me
// @Accept  json
// @Produce  json
// @Param request body Request true "Новые данные профиля"
// @Success 200 {object} response.OKResponse{data=models.UserView} "Обновленный профиль"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Запрос без аутентификации"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден или деактивирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /me [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.me.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	view, err := h.service.UpdateMe(r.Context(), models.UpdateUserEntry{
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CountryCode: req.CountryCode,
		City:        req.City,
	})
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
			log.Error("failed to update profile", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update profile"))
		}
		return
	}

	log.Info("profile updated")
	render.JSON(w, r, response.OKWithData(view))
}
