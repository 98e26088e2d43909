package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/callassist/internal/models"
)

// RevokeToken сохраняет запись об отзыве. Повторный отзыв ничего не меняет.
func (s *Storage) RevokeToken(ctx context.Context, t models.RevokedToken) error {
	const op = "storage.RevokeToken"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	var userID sql.NullString
	if isUUID(t.UserID) {
		userID = sql.NullString{String: t.UserID, Valid: true}
	}
	query := `INSERT INTO revoked_tokens (token_hash, user_id, reason, revoked_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (token_hash) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, t.TokenHash, userID, t.Reason, t.RevokedAt, t.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsTokenRevoked сообщает, есть ли запись об отзыве для хэша токена.
func (s *Storage) IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error) {
	const op = "storage.IsTokenRevoked"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_hash = $1)`
	if err := s.DB.QueryRowContext(ctx, query, tokenHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// PurgeExpiredTokens удаляет записи, чьи токены уже истекли сами.
func (s *Storage) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.PurgeExpiredTokens"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
