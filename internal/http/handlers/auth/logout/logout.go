// Package logout реализует выход: отзыв токена обновления.
//
// Ответ всегда успешный, даже если токен пустой, чужой или уже отозван.
package logout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/callassist/internal/http/response"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
)

// Request: токен обновления
type Request struct {
	RefreshToken string `json:"refresh_token"`
}

// Service описывает отзыв токена обновления.
type Service interface {
	Logout(ctx context.Context, refreshToken string)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Отзывает токен обновления. Всегда отвечает успехом.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен обновления"
// @Success 200 {object} response.Response "Выход выполнен"
// @Router /api/v1/auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("logout without readable body", sl.Err(err))
	}

	if req.RefreshToken != "" {
		h.service.Logout(r.Context(), req.RefreshToken)
	}

	log.Info("logged out")
	render.JSON(w, r, response.StatusOKWithData(map[string]string{
		"message": "logged out",
	}))
}
