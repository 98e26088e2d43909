package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/callassist/internal/models"
)

// CreateAccount в одной транзакции сохраняет пользователя, платёж и подписку
// и закрывает заявку на платёж. Заполняет идентификаторы в acc.
// Нарушение уникальности email даёт ErrUserExists,
// повтор ссылки платежа даёт ErrPaymentReferenceClaimed.
func (s *Storage) CreateAccount(ctx context.Context, acc *models.Account) error {
	const op = "storage.CreateAccount"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	u := &acc.User
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	var planID any
	if u.PlanID != nil {
		planID = *u.PlanID
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, name, timezone, password_hash, plaintext_password, role,
		                   is_active, plan_id, external_api_key, token_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		u.Email, u.Name, u.Timezone, u.PasswordHash, u.PlaintextPassword, u.Role,
		u.IsActive, planID, u.ExternalAPIKey, u.TokenVersion,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, constraintUserEmail) {
			return fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return fmt.Errorf("%s: insert user: %w", op, err)
	}

	if p := acc.Payment; p != nil {
		p.UserID = u.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO payments (user_id, plan_id, external_reference, amount, currency, status,
			                      plan_name, buyer_email, buyer_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at`,
			p.UserID, p.PlanID, p.ExternalReference, p.Amount, p.Currency, p.Status,
			p.PlanName, p.BuyerEmail, p.BuyerName,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			if isUniqueViolation(err, constraintPaymentReference) {
				return fmt.Errorf("%s: %w", op, ErrPaymentReferenceClaimed)
			}
			return fmt.Errorf("%s: insert payment: %w", op, err)
		}

		if _, err = tx.ExecContext(ctx, `
			UPDATE payment_claims SET status = $1, reason = '', updated_at = NOW()
			WHERE reference = $2`,
			models.ClaimStatusCompleted, p.ExternalReference,
		); err != nil {
			return fmt.Errorf("%s: complete claim: %w", op, err)
		}
	}

	if sub := acc.Subscription; sub != nil {
		sub.UserID = u.ID
		var lastPaymentID sql.NullString
		if acc.Payment != nil {
			sub.LastPaymentID = acc.Payment.ID
			lastPaymentID = sql.NullString{String: acc.Payment.ID, Valid: true}
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO subscriptions (user_id, plan_id, last_payment_id, status, start_date, end_date, renewal_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			sub.UserID, sub.PlanID, lastPaymentID, sub.Status, sub.StartDate, sub.EndDate, sub.RenewalCount,
		).Scan(&sub.ID)
		if err != nil {
			return fmt.Errorf("%s: insert subscription: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
