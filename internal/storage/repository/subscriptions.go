package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/callassist/internal/models"
)

// GetActiveSubscription возвращает действующую подписку пользователя
// с самой поздней датой окончания.
func (s *Storage) GetActiveSubscription(ctx context.Context, userID string) (*models.SubscriptionInfo, error) {
	const op = "storage.GetActiveSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT s.plan_id, p.name, s.status, s.start_date, s.end_date
			  FROM subscriptions s
			  JOIN plans p ON p.id = s.plan_id
			  WHERE s.user_id = $1 AND s.status = $2
			  ORDER BY s.end_date DESC
			  LIMIT 1`
	var info models.SubscriptionInfo
	err := s.DB.QueryRowContext(ctx, query, userID, models.SubscriptionStatusActive).
		Scan(&info.PlanID, &info.PlanName, &info.Status, &info.StartDate, &info.EndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &info, nil
}
