// Package scheduler собирает фоновые задачи: очистку списка отзыва
// и отчёт о платежах, ждущих ручной активации.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/magabrotheeeer/callassist/internal/config"
	"github.com/magabrotheeeer/callassist/internal/lib/metrics"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	revocationservice "github.com/magabrotheeeer/callassist/internal/services/revocation"
	schedulerservice "github.com/magabrotheeeer/callassist/internal/services/scheduler"
	"github.com/magabrotheeeer/callassist/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	db               *repository.Storage
	metricsServer    *http.Server
	cfg              config.Scheduler
	logger           *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	schedulerService := schedulerservice.NewSchedulerService(revocationservice.NewStore(db), db, logger)

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		schedulerService: schedulerService,
		db:               db,
		metricsServer:    metricsServer,
		cfg:              cfg.Scheduler,
		logger:           logger,
	}, nil
}

// Run запускает планировщик и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	go func() {
		a.logger.Info("metrics server starting on", slog.String("address", a.metricsServer.Addr))
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", sl.Err(err))
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.schedulerService.PurgeRevokedTokens(ctx, a.cfg.PurgeInterval)
	}()
	go func() {
		defer wg.Done()
		a.schedulerService.ReportManualFollowups(ctx, a.cfg.ReportInterval)
	}()

	<-ctx.Done()
	wg.Wait()

	a.logger.Info("shutting down scheduler service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to stop metrics server", sl.Err(err))
	}

	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}

	return nil
}
