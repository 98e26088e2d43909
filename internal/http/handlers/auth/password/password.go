// Package password реализует смену пароля владельцем аккаунта.
//
// После смены все ранее выданные токены обновления становятся недействительными,
// клиент входит заново.
package password

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/callassist/internal/http/middlewarectx"
	"github.com/magabrotheeeer/callassist/internal/http/response"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
)

// MsgChanged ответ после успешной смены пароля.
const MsgChanged = "password changed, please log in again"

// Request: текущий и новый пароль
type Request struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// Service описывает смену пароля.
type Service interface {
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
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
// @Summary Смена пароля
// @Description Проверяет текущий пароль и сохраняет новый. Ранее выданные токены обновления перестают действовать.
// @Tags Auth
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Текущий и новый пароль"
// @Success 200 {object} response.Response "Пароль изменён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или новый пароль"
// @Failure 401 {object} response.ErrorResponse "Неверный текущий пароль"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /api/v1/auth/password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.password"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		response.WriteStatus(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

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

	if err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		log.Info("password change rejected", slog.String("user_id", userID), sl.Err(err))
		response.WriteError(w, r, err, h.withDetail)
		return
	}

	log.Info("password changed", slog.String("user_id", userID))
	render.JSON(w, r, response.StatusOKWithData(map[string]string{"message": MsgChanged}))
}
