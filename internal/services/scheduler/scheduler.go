// Package services содержит фоновые задачи: чистку списка отозванных токенов
// и отчёт о платежах, ожидающих ручной активации.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/callassist/internal/lib/metrics"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	"github.com/magabrotheeeer/callassist/internal/models"
)

// RevocationPurger удаляет просроченные записи об отозванных токенах.
type RevocationPurger interface {
	Purge(ctx context.Context) (int64, error)
}

// ClaimRepository источник заявок на платежи.
type ClaimRepository interface {
	ListClaimsByStatus(ctx context.Context, status string) ([]models.PaymentClaim, error)
}

type SchedulerService struct {
	purger RevocationPurger
	claims ClaimRepository
	log    *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(purger RevocationPurger, claims ClaimRepository, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		purger: purger,
		claims: claims,
		log:    log,
	}
}

// PurgeRevokedTokens чистит список отзыва сразу и затем каждые interval до отмены ctx.
func (s *SchedulerService) PurgeRevokedTokens(ctx context.Context, interval time.Duration) {
	s.every(ctx, interval, s.runPurgeRevokedTokens)
}

// ReportManualFollowups публикует число платежей без активированного аккаунта
// сразу и затем каждые interval до отмены ctx.
func (s *SchedulerService) ReportManualFollowups(ctx context.Context, interval time.Duration) {
	s.every(ctx, interval, s.runReportManualFollowups)
}

func (s *SchedulerService) every(ctx context.Context, interval time.Duration, run func(context.Context)) {
	run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}

func (s *SchedulerService) runPurgeRevokedTokens(ctx context.Context) {
	s.log.Info("starting purge of expired revoked tokens")
	n, err := s.purger.Purge(ctx)
	if err != nil {
		s.log.Error("failed to purge revoked tokens", sl.Err(err))
		return
	}
	metrics.AddPurgedRevokedTokens(n)
	s.log.Info("revoked tokens purged", "count", n)
}

func (s *SchedulerService) runReportManualFollowups(ctx context.Context) {
	claims, err := s.claims.ListClaimsByStatus(ctx, models.ClaimStatusManualFollowup)
	if err != nil {
		s.log.Error("failed to list payment claims", sl.Err(err))
		return
	}
	metrics.SetManualFollowupClaims(len(claims))
	if len(claims) == 0 {
		s.log.Info("no payments awaiting manual activation")
		return
	}
	for _, c := range claims {
		s.log.Warn("payment awaiting manual activation",
			slog.String("payment_reference", c.Reference),
			slog.String("email", c.Email),
			slog.String("reason", c.Reason),
			slog.Time("claimed_at", c.ClaimedAt))
	}
}
