package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/magabrotheeeer/callassist/internal/cache"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	"github.com/magabrotheeeer/callassist/internal/models"
	"github.com/magabrotheeeer/callassist/internal/storage/repository"
)

const defaultProvisioningCode = "basic"

// slugProvisioningCodes коды тарифов платформы для тарифов без явного кода.
var slugProvisioningCodes = map[string]string{
	"starter":    "basic",
	"basic":      "basic",
	"silver":     "pro",
	"pro":        "pro",
	"gold":       "premium",
	"premium":    "premium",
	"platinum":   "enterprise",
	"lifetime":   "enterprise",
	"enterprise": "enterprise",
}

// errPlanNotFound тариф не найден ни по одному ключу.
var errPlanNotFound = errors.New("plan not found")

// ProvisioningCode код тарифа, передаваемый голосовой платформе.
func ProvisioningCode(plan *models.Plan, fallback string) string {
	if plan != nil {
		if plan.ProvisioningCode != "" {
			return plan.ProvisioningCode
		}
		if code, ok := slugProvisioningCodes[slug.Make(plan.Slug)]; ok {
			return code
		}
	}
	if fallback == "" {
		return defaultProvisioningCode
	}
	return fallback
}

// ResolvePlan ищет тариф по id, затем по коду, затем по slug.
// Для поиска по slug ссылка нормализуется: "Gold Plan" ищется как "gold-plan".
func (s *AuthService) ResolvePlan(ctx context.Context, ref string) (*models.Plan, error) {
	const op = "auth.ResolvePlan"
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%s: %w", op, errPlanNotFound)
	}
	lookups := []struct {
		kind  string
		value string
		fetch func(context.Context, string) (*models.Plan, error)
	}{
		{kind: "id", value: ref, fetch: s.plans.GetPlanByID},
		{kind: "code", value: ref, fetch: s.plans.GetPlanByCode},
		{kind: "slug", value: slug.Make(ref), fetch: s.plans.GetPlanBySlug},
	}
	for _, l := range lookups {
		plan, err := s.cachedPlan(ctx, l.kind, l.value, l.fetch)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return plan, nil
	}
	return nil, fmt.Errorf("%s: %w", op, errPlanNotFound)
}

// cachedPlan читает тариф из кэша, при промахе из хранилища.
// Сбой кэша не мешает: запрос уходит в хранилище.
func (s *AuthService) cachedPlan(ctx context.Context, kind, value string,
	fetch func(context.Context, string) (*models.Plan, error)) (*models.Plan, error) {
	key := cache.PlanKey(kind, value)
	if s.cache != nil {
		var cached models.Plan
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("plan cache read failed", "key", key, sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	plan, err := fetch(ctx, value)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, plan, s.opts.PlanCacheTTL); err != nil {
			s.log.Warn("plan cache write failed", "key", key, sl.Err(err))
		}
	}
	return plan, nil
}
