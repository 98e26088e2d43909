package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/callassist/internal/http/response"
	"github.com/magabrotheeeer/callassist/internal/lib/apperr"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
)

// RequireRole пропускает только активных пользователей с ролью role.
// Роль в токене не хранится, поэтому пользователь загружается из хранилища.
// Ставится после JWTMiddleware.
func RequireRole(users UserLookup, role string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireRole"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				log.Error("user identification missing")
				response.WriteStatus(w, r, http.StatusUnauthorized, "user identification missing")
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if apperr.KindOf(err) == apperr.NotFound {
					response.WriteStatus(w, r, http.StatusUnauthorized, "user not found")
					return
				}
				log.Error("failed to load user", sl.Err(err))
				response.WriteStatus(w, r, http.StatusInternalServerError, "internal error")
				return
			}

			if !user.IsActive || user.Role != role {
				log.Warn("access denied", slog.String("user_id", userID), slog.String("role", user.Role))
				response.WriteStatus(w, r, http.StatusForbidden, "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
