// Package activate реализует HTTP-обработчик второго шага регистрации.
package activate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/glebkarpov/identity-hub/internal/http/response"
	"github.com/glebkarpov/identity-hub/internal/lib/sl"
	userservice "github.com/glebkarpov/identity-hub/internal/services/user"
)

// Request — входные данные для активации пользователя.
type Request struct {
	Email            string `json:"email" validate:"required,email"`
	VerificationCode string `json:"verification_code" validate:"required,len=4,numeric"`
}

// Service определяет методы бизнес-логики для активации пользователя.
type Service interface {
	Activate(ctx context.Context, email, code string) error
}

// Handler обрабатывает HTTP-запросы активации пользователя.
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
// @Summary Второй шаг регистрации
// @Description Сверяет код подтверждения и активирует пользователя
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и код подтверждения"
// @Success 200 {object} response.OKResponse "Пользователь активирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неверный код"
// @Failure 404 {object} response.ErrorResponse "Email не ожидает активации"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при активации"
// @Router /auth/registration/step-2 [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.activate"

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

	if err := h.service.Activate(r.Context(), req.Email, req.VerificationCode); err != nil {
		switch {
		case errors.Is(err, userservice.ErrUnknownEmail):
			log.Warn("no pending registration for email", slog.String("email", req.Email))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("unknown email"))
		case errors.Is(err, userservice.ErrInvalidVerificationCode):
			log.Warn("verification code mismatch", slog.String("email", req.Email))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid verification code"))
		default:
			log.Error("activation failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to activate user"))
		}
		return
	}

	log.Info("user activated", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "user activated successfully",
	}))
}
