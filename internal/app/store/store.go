// Package store собирает HTTP-приложение магазина: хранилище, кэш, брокер,
// сервисы и маршруты.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/vpn-store/internal/cache"
	"github.com/magabrotheeeer/vpn-store/internal/config"
	"github.com/magabrotheeeer/vpn-store/internal/http/cookies"
	"github.com/magabrotheeeer/vpn-store/internal/http/handlers/health"
	"github.com/magabrotheeeer/vpn-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/vpn-store/internal/lib/jwt"
	"github.com/magabrotheeeer/vpn-store/internal/lib/metrics"
	"github.com/magabrotheeeer/vpn-store/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/vpn-store/internal/lib/sl"
	"github.com/magabrotheeeer/vpn-store/internal/migrations"
	"github.com/magabrotheeeer/vpn-store/internal/security"
	"github.com/magabrotheeeer/vpn-store/internal/services/auth"
	"github.com/magabrotheeeer/vpn-store/internal/services/catalog"
	"github.com/magabrotheeeer/vpn-store/internal/services/dashboard"
	"github.com/magabrotheeeer/vpn-store/internal/services/notification"
	"github.com/magabrotheeeer/vpn-store/internal/services/order"
	"github.com/magabrotheeeer/vpn-store/internal/services/settings"
	"github.com/magabrotheeeer/vpn-store/internal/services/users"
	"github.com/magabrotheeeer/vpn-store/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// Services сервисы, которые обслуживают маршруты.
type Services struct {
	Auth      *auth.AuthService
	Catalog   *catalog.Service
	Orders    *order.Service
	Users     *users.Service
	Settings  *settings.Service
	Dashboard *dashboard.Service
}

// App HTTP-приложение магазина.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
	orders *order.Service
}

// New подключает зависимости, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "store.New"

	if cfg.UsesDevSecret() {
		logger.Warn("jwt secret is not set, using development secret")
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a := &App{logger: logger, db: db}

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		productCache  catalog.Cache
		settingsCache settings.Cache
	)
	if cfg.AddressRedis != "" {
		a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		productCache = a.cache
		settingsCache = a.cache
	}

	policy := security.Policy{MaxAttempts: cfg.MaxAttempts, Window: cfg.Window, RevocationGrace: cfg.Leeway}
	var guard security.Store
	if cfg.SecurityStore == "redis" {
		guard = security.NewRedisStore(a.cache.Db, policy)
	} else {
		guard = security.NewMemoryStore(policy)
	}

	var notifier order.Notifier
	if cfg.RabbitMQURL != "" {
		a.conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.ch, err = rabbitmq.SetupChannel(a.conn, rabbitmq.GetNotificationQueues())
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		notifier = notification.NewQueueNotifier(logger, rabbitmq.NewPublisher(a.ch))
	} else {
		logger.Warn("rabbitmq is not configured, delivery notifications will only be logged")
		notifier = notification.NewLogNotifier(logger)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, jwt.WithLeeway(cfg.Leeway))

	catalogService := catalog.NewService(logger, db, productCache)
	svc := Services{
		Auth:      auth.NewAuthService(logger, db, jwtMaker, guard, m),
		Catalog:   catalogService,
		Orders:    order.NewService(logger, db, catalogService, db, notifier, m),
		Users:     users.NewService(logger, db),
		Settings:  settings.NewService(logger, db, settingsCache, cfg.SettingsCacheTTL),
		Dashboard: dashboard.NewService(logger, db),
	}

	a.orders = svc.Orders

	if cfg.AdminEmail != "" {
		created, err := svc.Auth.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if created {
			logger.Info("admin account created", slog.String("email", cfg.AdminEmail))
		}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, RouteOptions{
		Services:   svc,
		Metrics:    m,
		Limiter:    middlewarectx.NewIPLimiter(cfg.RPS, cfg.Burst),
		Cookies:    cookies.Options{Secure: cfg.SecureCookies(), Domain: cfg.CookieDomain},
		StaticDir:  cfg.StaticDir,
		HealthDeps: a.healthChecks(),
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

func (a *App) healthChecks() map[string]health.Check {
	checks := map[string]health.Check{
		"postgres": func(ctx context.Context) error {
			return a.db.DB.PingContext(ctx)
		},
	}
	if a.cache != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.cache.Db.Ping(ctx).Err()
		}
	}
	if a.conn != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if a.conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	return checks
}

// Run запускает сервер и останавливает его при отмене ctx.
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
	if a.orders != nil {
		a.orders.Wait()
	}
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
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
