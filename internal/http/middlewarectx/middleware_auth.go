// Package middlewarectx содержит HTTP middleware для обработки и проверки JWT токенов.
//
// JWTMiddleware проверяет наличие и валидность токена доступа в заголовке Authorization
// и в случае успеха добавляет в контекст идентификатор пользователя.
// Токен доступа проверяется только по подписи, сроку и типу, без обращения к хранилищу.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/callassist/internal/http/response"
	"github.com/magabrotheeeer/callassist/internal/lib/jwt"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID: ключ для идентификатора пользователя в контексте
	UserID Key = "user_id"
)

// UserIDFromContext возвращает идентификатор пользователя, положенный JWTMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserID).(string)
	return id, ok && id != ""
}

// WithUserID кладёт идентификатор пользователя в контекст.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserID, userID)
}

// BearerToken достаёт токен из заголовка Authorization.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// JWTMiddleware возвращает HTTP middleware, который проверяет токен доступа в заголовке Authorization.
func JWTMiddleware(verifier AccessVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := BearerToken(r)
			if !ok {
				log.Info("missing or invalid authorization header")
				response.WriteStatus(w, r, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			claims, err := verifier.VerifyAccess(tokenStr)
			if err != nil {
				log.Info("invalid access token", sl.Err(err))
				msg := "invalid access token"
				if errors.Is(err, jwt.ErrExpired) {
					msg = "access token expired"
				}
				response.WriteStatus(w, r, http.StatusUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID())))
		})
	}
}
