package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/callassist/internal/lib/jwt"
	"github.com/magabrotheeeer/callassist/internal/models"
)

// AccessVerifier проверяет токен доступа.
type AccessVerifier interface {
	VerifyAccess(token string) (*jwt.Claims, error)
}

// UserLookup загружает пользователя для проверки роли.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}
