// Package login реализует HTTP-обработчик входа по email и паролю.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/callassist/internal/http/response"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	authservice "github.com/magabrotheeeer/callassist/internal/services/auth"
)

// Request: входные данные для входа
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service описывает вход в систему.
type Service interface {
	Login(ctx context.Context, email, password string) (*authservice.Result, error)
}

type Handler struct {
	log        *slog.Logger
	authClient Service
	validate   *validator.Validate
	withDetail bool
}

func New(log *slog.Logger, authClient Service, withDetail bool) *Handler {
	return &Handler{
		log:        log,
		authClient: authClient,
		validate:   validator.New(),
		withDetail: withDetail,
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль, возвращает профиль и пару токенов.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные для входа"
// @Success 200 {object} response.Response "Пользователь и токены"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учётные данные или аккаунт отключён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /api/v1/auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.WriteStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.WriteValidation(w, r, err)
		return
	}

	res, err := h.authClient.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Info("login failed", slog.String("email", req.Email), sl.Err(err))
		response.WriteError(w, r, err, h.withDetail)
		return
	}

	log.Info("login successful", slog.String("user_id", res.User.ID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
