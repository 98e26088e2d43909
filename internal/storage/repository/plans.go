package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/callassist/internal/lib/period"
	"github.com/magabrotheeeer/callassist/internal/models"
)

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// planPeriod проверяет расчётный период тарифа из базы.
func planPeriod(raw string) (period.Period, error) {
	p := period.Period(raw)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidBillingPeriod, raw)
	}
	return p, nil
}

func (s *Storage) getPlan(ctx context.Context, op, column, value string) (*models.Plan, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, code, slug, name, price, currency, billing_period,
			      COALESCE(provisioning_code, ''), is_active
			  FROM plans
			  WHERE ` + column + ` = $1`
	var (
		p  models.Plan
		bp string
	)
	err := s.DB.QueryRowContext(ctx, query, value).Scan(&p.ID, &p.Code, &p.Slug, &p.Name,
		&p.Price, &p.Currency, &bp, &p.ProvisioningCode, &p.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.BillingPeriod, err = planPeriod(bp); err != nil {
		return nil, fmt.Errorf("%s: plan %s: %w", op, p.ID, err)
	}
	return &p, nil
}

// GetPlanByID возвращает тариф по идентификатору.
func (s *Storage) GetPlanByID(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlanByID"
	if !isUUID(id) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return s.getPlan(ctx, op, "id", id)
}

// GetPlanByCode возвращает тариф по коду.
func (s *Storage) GetPlanByCode(ctx context.Context, code string) (*models.Plan, error) {
	return s.getPlan(ctx, "storage.GetPlanByCode", "code", code)
}

// GetPlanBySlug возвращает тариф по slug.
func (s *Storage) GetPlanBySlug(ctx context.Context, slug string) (*models.Plan, error) {
	return s.getPlan(ctx, "storage.GetPlanBySlug", "slug", slug)
}
