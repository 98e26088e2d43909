// Package register реализует HTTP-обработчик регистрации без оплаты.
//
// Аккаунт создаётся на голосовой платформе с тарифом по умолчанию,
// затем сохраняется пользователь и выдаётся пара токенов.
package register

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

// Request: входные данные для регистрации
type Request struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Timezone string `json:"timezone" validate:"max=64"`
}

// Service описывает регистрацию без оплаты.
type Service interface {
	RegisterUnpaid(ctx context.Context, in authservice.Profile) (*authservice.Result, error)
}

type Handler struct {
	log        *slog.Logger
	service    Service
	validate   *validator.Validate
	withDetail bool
}

func New(log *slog.Logger, service Service, withDetail bool) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		validate:   validator.New(),
		withDetail: withDetail,
	}
}

// ServeHTTP godoc
// @Summary Регистрация без оплаты
// @Description Создаёт аккаунт на голосовой платформе с тарифом по умолчанию и возвращает пару токенов.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные владельца аккаунта"
// @Success 201 {object} response.Response "Пользователь и токены"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Email уже зарегистрирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Платформа не активировала аккаунт"
// @Router /api/v1/auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.WriteValidation(w, r, err)
		return
	}

	res, err := h.service.RegisterUnpaid(r.Context(), authservice.Profile{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Timezone: req.Timezone,
	})
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		response.WriteError(w, r, err, h.withDetail)
		return
	}

	log.Info("user registered", slog.String("user_id", res.User.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(res))
}
