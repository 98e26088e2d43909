// Package userview реализует просмотр пользователя администратором.
//
// Ответ содержит ключ голосовой платформы и сохранённый пароль,
// поэтому маршрут закрыт проверкой роли.
package userview

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/callassist/internal/http/middlewarectx"
	"github.com/magabrotheeeer/callassist/internal/http/response"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	"github.com/magabrotheeeer/callassist/internal/models"
)

// Service описывает чтение пользователя администратором.
type Service interface {
	AdminView(ctx context.Context, userID string) (*models.AdminUser, error)
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
// @Summary Пользователь глазами администратора
// @Description Полные данные пользователя, включая ключ платформы и пароль, если он хранится.
// @Tags Admin
// @Security BearerAuth
// @Produce  json
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response "Пользователь"
// @Failure 401 {object} response.ErrorResponse "Нет токена доступа"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Некорректный ID"
// @Router /api/v1/admin/users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userview"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if err := h.validate.Var(id, "required,uuid"); err != nil {
		log.Info("invalid user id", slog.String("id", id))
		response.WriteStatus(w, r, http.StatusUnprocessableEntity, "invalid user id")
		return
	}

	admin, _ := middlewarectx.UserIDFromContext(r.Context())
	view, err := h.service.AdminView(r.Context(), id)
	if err != nil {
		log.Error("failed to load user", slog.String("id", id), sl.Err(err))
		response.WriteError(w, r, err, h.withDetail)
		return
	}

	log.Info("admin viewed user", slog.String("admin_id", admin), slog.String("user_id", id))
	render.JSON(w, r, response.StatusOKWithData(view))
}
