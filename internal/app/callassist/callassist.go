// Package callassist собирает HTTP API: регистрацию, сессии и кабинет пользователя.
package callassist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/callassist/internal/cache"
	"github.com/magabrotheeeer/callassist/internal/config"
	"github.com/magabrotheeeer/callassist/internal/http/handlers/health"
	"github.com/magabrotheeeer/callassist/internal/http/middlewarectx"
	"github.com/magabrotheeeer/callassist/internal/lib/jwt"
	"github.com/magabrotheeeer/callassist/internal/lib/password"
	"github.com/magabrotheeeer/callassist/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/callassist/internal/lib/sl"
	"github.com/magabrotheeeer/callassist/internal/migrations"
	"github.com/magabrotheeeer/callassist/internal/paymentprovider"
	"github.com/magabrotheeeer/callassist/internal/provisioning"
	authservice "github.com/magabrotheeeer/callassist/internal/services/auth"
	notificationservice "github.com/magabrotheeeer/callassist/internal/services/notification"
	revocationservice "github.com/magabrotheeeer/callassist/internal/services/revocation"
	"github.com/magabrotheeeer/callassist/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.callassist.New"

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("%s: jwt secret key is empty", op)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger, db: db}
	checks := map[string]health.Pinger{"postgres": db}

	// Без redis тарифы читаются прямо из базы.
	var planCache authservice.PlanCache
	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("redis unavailable, plan cache disabled", sl.Err(err))
	} else {
		app.cache = cacheRedis
		planCache = cacheRedis
		checks["redis"] = cacheRedis
	}

	// Без брокера приветствие сохраняется только в кабинете.
	var publisher notificationservice.Publisher
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, welcome emails disabled", sl.Err(err))
	} else {
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			logger.Warn("rabbitmq channel setup failed, welcome emails disabled", sl.Err(err))
			_ = conn.Close()
		} else {
			app.conn, app.ch = conn, ch
			publisher = rabbitmq.NewPublisher(ch, rabbitmq.NotificationsExchange)
		}
	}

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.Issuer)
	notificationService := notificationservice.NewNotificationService(db, publisher, logger)

	authService := authservice.NewAuthService(authservice.Deps{
		Accounts:    db,
		Plans:       db,
		Cache:       planCache,
		Gateway:     paymentprovider.NewClient(cfg.GatewayURL, cfg.GatewayKeyID, cfg.GatewayKeySecret, cfg.GatewayTimeout),
		Provisioner: provisioning.NewClient(cfg.ProvisioningURL, cfg.ProvisioningAPIKey, cfg.ProvisioningTimeout),
		Revocations: revocationservice.NewStore(db),
		Tokens:      tokens,
		Hasher:      password.NewHasher(cfg.BcryptCost),
		Notifier:    notificationService,
	}, authservice.Options{
		RetainPlaintext: cfg.RetainPlaintext,
		DefaultPlanCode: cfg.DefaultPlanCode,
		PlanCacheTTL:    cfg.PlanCacheTTL,
		RefreshTTL:      tokens.RefreshTTL(),
	}, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Routes{
		Auth:          authService,
		Notifications: notificationService,
		Tokens:        tokens,
		Limiter:       middlewarectx.NewIPRateLimiter(cfg.RPS, cfg.Burst),
		Checks:        checks,
		WithDetail:    !cfg.IsProd(),
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
