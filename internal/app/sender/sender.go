// Package sender собирает сервис рассылки уведомлений из очереди RabbitMQ.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/taskshare/internal/config"
	"github.com/magabrotheeeer/taskshare/internal/lib/metrics"
	"github.com/magabrotheeeer/taskshare/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/taskshare/internal/services/sender"
)

// App представляет сервис рассылки.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	metricsServer *http.Server
	logger        *slog.Logger
}

// New подключается к брокеру и готовит SMTP-транспорт.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	transport := smtp.NewTransport(cfg.SMTP, logger)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(logger, transport, m),
		metricsServer: &http.Server{
			Addr:              cfg.AddressHTTP,
			Handler:           router,
			ReadHeaderTimeout: cfg.TimeoutHTTP,
		},
		logger: logger,
	}, nil
}

// Run потребляет очередь уведомлений до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.NotificationsQueue, a.senderService.HandleMessage)
	if err != nil {
		a.logger.Error("failed to start notifications consumer", sl.Err(err))
		a.close()
		return err
	}

	go func() {
		a.logger.Info("metrics server starting on", slog.String("address", a.metricsServer.Addr))
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", sl.Err(err))
		}
	}()

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to stop metrics server", sl.Err(err))
	}
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
