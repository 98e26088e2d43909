// Package refresh реализует обмен токена обновления на новый токен доступа.
package refresh

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
)

// Request: токен обновления
type Request struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Service описывает обновление токена доступа.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
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
// @Summary Обновление токена доступа
// @Description Принимает действующий токен обновления и выдаёт новый токен доступа.
// @Description Токен обновления остаётся прежним.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен обновления"
// @Success 200 {object} response.Response "Новый токен доступа"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Токен отозван, просрочен или устарел"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /api/v1/auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

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

	access, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		log.Info("refresh rejected", sl.Err(err))
		response.WriteError(w, r, err, h.withDetail)
		return
	}

	log.Info("access token refreshed")
	render.JSON(w, r, response.StatusOKWithData(map[string]string{
		"access_token": access,
	}))
}
