// Package taskshare собирает HTTP-приложение: хранилище, кэш событий,
// публикацию уведомлений, платёжного провайдера и маршруты.
package taskshare

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

	"github.com/magabrotheeeer/taskshare/internal/cache"
	"github.com/magabrotheeeer/taskshare/internal/config"
	"github.com/magabrotheeeer/taskshare/internal/lib/jwt"
	"github.com/magabrotheeeer/taskshare/internal/lib/metrics"
	"github.com/magabrotheeeer/taskshare/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/migrations"
	"github.com/magabrotheeeer/taskshare/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/taskshare/internal/services/auth"
	"github.com/magabrotheeeer/taskshare/internal/services/billing"
	"github.com/magabrotheeeer/taskshare/internal/services/share"
	"github.com/magabrotheeeer/taskshare/internal/services/tasklist"
	"github.com/magabrotheeeer/taskshare/internal/storage/repository"
)

// App представляет HTTP-приложение taskshare.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает зависимости, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	publisher := rabbitmq.NewPublisher(ch)

	provider, err := paymentprovider.NewFromConfig(cfg.Payment)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, err
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	svc := Services{
		Auth:     authservice.NewAuthService(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)),
		TaskList: tasklist.New(db),
		Share:    share.New(logger, db, publisher, share.WithMetrics(m)),
		Webhook:  billing.NewWebhookService(logger, db, provider, cacheRedis, publisher, m, cfg.Payment.EventTTL),
		DB:       db.DB,
	}
	checkout, err := billing.NewCheckoutService(logger, db, provider, billing.CheckoutConfig{
		PriceID:    cfg.Payment.PriceID,
		SuccessURL: cfg.Payment.SuccessURL,
		CancelURL:  cfg.Payment.CancelURL,
		Timeout:    cfg.Payment.Timeout,
	}, m)
	switch {
	case errors.Is(err, billing.ErrCheckoutDisabled):
		logger.Warn("checkout disabled: payment price_id is not set")
	case err != nil:
		_ = ch.Close()
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, err
	default:
		svc.Checkout = checkout
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, svc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run обслуживает запросы до отмены ctx и затем корректно останавливает сервер.
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

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
