// Package notifications реализует выдачу уведомлений текущего пользователя.
package notifications

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/callassist/internal/http/middlewarectx"
	"github.com/magabrotheeeer/callassist/internal/http/response"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	"github.com/magabrotheeeer/callassist/internal/models"
)

// Service описывает чтение уведомлений.
type Service interface {
	List(ctx context.Context, userID string, limit int) ([]models.Notification, error)
}

type Handler struct {
	log        *slog.Logger
	service    Service
	withDetail bool
}

func New(log *slog.Logger, service Service, withDetail bool) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		withDetail: withDetail,
	}
}

// ServeHTTP godoc
// @Summary Уведомления пользователя
// @Description Последние уведомления, новые первыми.
// @Tags User
// @Security BearerAuth
// @Produce  json
// @Param limit query int false "Количество, по умолчанию 20, не больше 100"
// @Success 200 {object} response.Response "Список уведомлений"
// @Failure 400 {object} response.ErrorResponse "Некорректный limit"
// @Failure 401 {object} response.ErrorResponse "Нет токена доступа"
// @Router /api/v1/notifications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.notifications"

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

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			log.Info("invalid limit", slog.String("limit", raw))
			response.WriteStatus(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		response.WriteError(w, r, err, h.withDetail)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"notifications": list,
	}))
}
