// Package services хранит отозванные токены обновления.
//
// В базе лежит только sha256 от токена: утечка таблицы не даёт
// пригодных к предъявлению токенов.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/magabrotheeeer/callassist/internal/models"
)

// Repository контракт хранилища отозванных токенов.
type Repository interface {
	RevokeToken(ctx context.Context, t models.RevokedToken) error
	IsTokenRevoked(ctx context.Context, tokenHash string) (bool, error)
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// Store список отзыва поверх Repository.
type Store struct {
	repo Repository
	now  func() time.Time
}

// NewStore создает новый экземпляр Store.
func NewStore(repo Repository) *Store {
	return &Store{repo: repo, now: time.Now}
}

// WithClock подменяет источник времени.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// HashToken отпечаток токена для хранения.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// IsRevoked сообщает, отозван ли токен.
func (s *Store) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "revocation.IsRevoked"
	revoked, err := s.repo.IsTokenRevoked(ctx, HashToken(token))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return revoked, nil
}

// Revoke отзывает токен. Повторный отзыв не ошибка.
// Нулевой expiresAt заменяется текущим моментом: запись уйдёт при ближайшей чистке,
// а такой токен и так не пройдёт проверку срока.
func (s *Store) Revoke(ctx context.Context, token, userID, reason string, expiresAt time.Time) error {
	const op = "revocation.Revoke"
	now := s.now().UTC()
	if expiresAt.IsZero() {
		expiresAt = now
	}
	err := s.repo.RevokeToken(ctx, models.RevokedToken{
		TokenHash: HashToken(token),
		UserID:    userID,
		Reason:    reason,
		RevokedAt: now,
		ExpiresAt: expiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Purge удаляет записи о токенах, срок которых уже вышел.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	const op = "revocation.Purge"
	n, err := s.repo.PurgeExpiredTokens(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
