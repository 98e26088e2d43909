// Package me реализует выдачу профиля текущего пользователя.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/callassist/internal/http/middlewarectx"
	"github.com/magabrotheeeer/callassist/internal/http/response"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	authservice "github.com/magabrotheeeer/callassist/internal/services/auth"
)

// Service описывает получение профиля.
type Service interface {
	Profile(ctx context.Context, userID string) (*authservice.UserProfile, error)
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
// @Summary Профиль текущего пользователя
// @Description Возвращает публичные данные пользователя и действующую подписку.
// @Description Ключ голосовой платформы отдаётся только маской.
// @Tags User
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Response "Профиль"
// @Failure 401 {object} response.ErrorResponse "Нет токена доступа"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /api/v1/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.me"

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

	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		log.Error("failed to load profile", slog.String("user_id", userID), sl.Err(err))
		response.WriteError(w, r, err, h.withDetail)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(profile))
}
