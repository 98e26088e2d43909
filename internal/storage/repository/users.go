package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/callassist/internal/models"
)

const userColumns = `id, email, name, timezone, password_hash, plaintext_password, role,
	is_active, plan_id, external_api_key, token_version, created_at, last_login_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		planID    sql.NullString
		lastLogin sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Timezone, &u.PasswordHash, &u.PlaintextPassword,
		&u.Role, &u.IsActive, &planID, &u.ExternalAPIKey, &u.TokenVersion, &u.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	if planID.Valid {
		u.PlanID = &planID.String
	}
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, nil
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE lower(email) = lower($1)`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// EmailExists сообщает, занят ли email.
func (s *Storage) EmailExists(ctx context.Context, email string) (bool, error) {
	const op = "storage.EmailExists"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`
	if err := s.DB.QueryRowContext(ctx, query, strings.TrimSpace(email)).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// TouchLastLogin обновляет дату последнего входа.
func (s *Storage) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	const op = "storage.TouchLastLogin"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users SET last_login_at = $1 WHERE id = $2`
	if _, err := s.DB.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePassword одним запросом меняет хэш пароля и tokenVersion.
func (s *Storage) UpdatePassword(ctx context.Context, id, passwordHash, plaintext string, tokenVersion int64) error {
	const op = "storage.UpdatePassword"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users
			  SET password_hash = $1,
			      plaintext_password = $2,
			      token_version = GREATEST(token_version, $3)
			  WHERE id = $4`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, plaintext, tokenVersion, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
