package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/callassist/internal/models"
)

// ClaimPaymentReference атомарно занимает внешнюю ссылку платежа.
// Второй вызов с той же ссылкой получает ErrPaymentReferenceClaimed,
// даже если первый ещё не завершился.
func (s *Storage) ClaimPaymentReference(ctx context.Context, reference, email string) error {
	const op = "storage.ClaimPaymentReference"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO payment_claims (reference, email, status)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (reference) DO NOTHING`
	res, err := s.DB.ExecContext(ctx, query, reference, email, models.ClaimStatusClaimed)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrPaymentReferenceClaimed)
	}
	return nil
}

// MarkClaim меняет статус заявки и причину.
func (s *Storage) MarkClaim(ctx context.Context, reference, status, reason string) error {
	const op = "storage.MarkClaim"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE payment_claims
			  SET status = $1, reason = $2, updated_at = NOW()
			  WHERE reference = $3`
	res, err := s.DB.ExecContext(ctx, query, status, reason, reference)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListClaimsByStatus возвращает заявки в заданном статусе, старые первыми.
func (s *Storage) ListClaimsByStatus(ctx context.Context, status string) ([]models.PaymentClaim, error) {
	const op = "storage.ListClaimsByStatus"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT reference, email, status, reason, claimed_at, updated_at
			  FROM payment_claims
			  WHERE status = $1
			  ORDER BY claimed_at`
	rows, err := s.DB.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.PaymentClaim
	for rows.Next() {
		var c models.PaymentClaim
		if err := rows.Scan(&c.Reference, &c.Email, &c.Status, &c.Reason, &c.ClaimedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
