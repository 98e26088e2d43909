// Package registerpaid реализует HTTP-обработчик регистрации по оплаченному платежу.
package registerpaid

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/callassist/internal/http/response"
	"github.com/magabrotheeeer/callassist/internal/lib/apperr"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	authservice "github.com/magabrotheeeer/callassist/internal/services/auth"
)

// Request: входные данные для регистрации с оплатой.
// PlanID принимает id, код или slug тарифа.
type Request struct {
	Name             string `json:"name" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8,max=72"`
	Timezone         string `json:"timezone" validate:"max=64"`
	PlanID           string `json:"plan_id" validate:"required,max=100"`
	PaymentReference string `json:"payment_reference" validate:"required,max=255"`
}

// Service описывает регистрацию по платежу.
type Service interface {
	RegisterPaid(ctx context.Context, in authservice.PaidRegistration) (*authservice.Result, error)
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
// @Summary Регистрация по оплаченному платежу
// @Description Проверяет платёж у шлюза, создаёт аккаунт на голосовой платформе и возвращает пару токенов.
// @Description Один платёж создаёт не больше одного аккаунта.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные владельца, тариф и ссылка на платёж"
// @Success 201 {object} response.Response "Пользователь и токены"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или тариф"
// @Failure 402 {object} response.ErrorResponse "Платёж не подтверждён"
// @Failure 409 {object} response.ErrorResponse "Email или платёж уже использованы"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Платёж получен, активация будет выполнена вручную"
// @Router /api/v1/auth/register/paid [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.registerpaid"

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
	log.Info("request body decoded",
		slog.String("email", req.Email),
		slog.String("plan", req.PlanID),
		slog.String("payment_reference", req.PaymentReference))

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.WriteValidation(w, r, err)
		return
	}

	res, err := h.service.RegisterPaid(r.Context(), authservice.PaidRegistration{
		Profile: authservice.Profile{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Timezone: req.Timezone,
		},
		Plan:             req.PlanID,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		if apperr.IsProvisioning(err) {
			log.Error("paid registration needs manual activation",
				slog.String("payment_reference", req.PaymentReference), sl.Err(err))
		} else {
			log.Info("paid registration rejected", sl.Err(err))
		}
		response.WriteError(w, r, err, h.withDetail)
		return
	}

	log.Info("user registered", slog.String("user_id", res.User.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(res))
}
