package callassist

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/callassist/internal/http/handlers/admin/userview"
	"github.com/magabrotheeeer/callassist/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/callassist/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/callassist/internal/http/handlers/auth/password"
	"github.com/magabrotheeeer/callassist/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/callassist/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/callassist/internal/http/handlers/auth/registerpaid"
	"github.com/magabrotheeeer/callassist/internal/http/handlers/health"
	"github.com/magabrotheeeer/callassist/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/callassist/internal/http/handlers/user/notifications"
	"github.com/magabrotheeeer/callassist/internal/http/middlewarectx"
	"github.com/magabrotheeeer/callassist/internal/lib/jwt"
	"github.com/magabrotheeeer/callassist/internal/lib/metrics"
	"github.com/magabrotheeeer/callassist/internal/models"
	authservice "github.com/magabrotheeeer/callassist/internal/services/auth"
	notificationservice "github.com/magabrotheeeer/callassist/internal/services/notification"
)

// Routes зависимости маршрутов.
type Routes struct {
	Auth          *authservice.AuthService
	Notifications *notificationservice.NotificationService
	Tokens        jwt.Maker
	Limiter       *middlewarectx.IPRateLimiter
	Checks        map[string]health.Pinger
	WithDetail    bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Routes) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.Get("/health", health.New(logger, deps.Checks).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(deps.Limiter, logger))
			r.Post("/auth/register", register.New(logger, deps.Auth, deps.WithDetail).ServeHTTP)
			r.Post("/auth/register/paid", registerpaid.New(logger, deps.Auth, deps.WithDetail).ServeHTTP)
			r.Post("/auth/login", login.New(logger, deps.Auth, deps.WithDetail).ServeHTTP)
			r.Post("/auth/refresh", refresh.New(logger, deps.Auth, deps.WithDetail).ServeHTTP)
			r.Post("/auth/logout", logout.New(logger, deps.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Tokens, logger))
			r.Post("/auth/password", password.New(logger, deps.Auth, deps.WithDetail).ServeHTTP)
			r.Get("/me", me.New(logger, deps.Auth, deps.WithDetail).ServeHTTP)
			r.Get("/notifications", notifications.New(logger, deps.Notifications, deps.WithDetail).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(deps.Auth, models.RoleAdmin, logger))
				r.Get("/admin/users/{id}", userview.New(logger, deps.Auth, deps.WithDetail).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", metrics.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
