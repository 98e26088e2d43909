package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/callassist/internal/models"
)

// CreateNotification сохраняет уведомление и возвращает его идентификатор.
func (s *Storage) CreateNotification(ctx context.Context, n models.Notification) (string, error) {
	const op = "storage.CreateNotification"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	var id string
	query := `INSERT INTO notifications (user_id, kind, title, body)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, n.UserID, n.Kind, n.Title, n.Body).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListNotifications возвращает последние уведомления пользователя.
func (s *Storage) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	const op = "storage.ListNotifications"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, kind, title, body, created_at
			  FROM notifications
			  WHERE user_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
