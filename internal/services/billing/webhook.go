package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
	"github.com/magabrotheeeer/taskshare/internal/lib/metrics"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/models"
	"github.com/magabrotheeeer/taskshare/internal/paymentprovider"
	"github.com/magabrotheeeer/taskshare/internal/storage/repository"
)

// DefaultEventTTL — сколько помнить обработанное событие.
const DefaultEventTTL = 72 * time.Hour

// WebhookService применяет события провайдера к тарифу пользователя.
type WebhookService struct {
	log      *slog.Logger
	users    UserStore
	provider paymentprovider.Provider
	events   EventStore
	notifier Notifier
	metrics  *metrics.Metrics
	eventTTL time.Duration
}

// NewWebhookService создаёт WebhookService. events и notifier могут быть nil.
func NewWebhookService(log *slog.Logger, users UserStore, provider paymentprovider.Provider, events EventStore, notifier Notifier, m *metrics.Metrics, eventTTL time.Duration) *WebhookService {
	if eventTTL <= 0 {
		eventTTL = DefaultEventTTL
	}
	return &WebhookService{
		log:      log,
		users:    users,
		provider: provider,
		events:   events,
		notifier: notifier,
		metrics:  m,
		eventTTL: eventTTL,
	}
}

// SignatureHeader возвращает заголовок, в котором провайдер передаёт подпись.
func (s *WebhookService) SignatureHeader() string {
	return s.provider.SignatureHeader()
}

// HandleWebhook проверяет подпись сырого тела payload и применяет событие.
//
// nil означает, что событие можно подтвердить провайдеру, в том числе когда
// оно проигнорировано. Ошибка KindInternal просит провайдера повторить доставку.
func (s *WebhookService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		if errors.Is(err, paymentprovider.ErrMalformedEvent) {
			s.metrics.WebhookEvent("unknown", "malformed")
			return apperr.Wrap(apperr.KindBadRequest, apperr.ReasonMalformedEvent, err, "malformed webhook event")
		}
		s.log.Warn("webhook signature check failed", sl.Err(err))
		s.metrics.WebhookEvent("unknown", "invalid_signature")
		return apperr.Wrap(apperr.KindBadRequest, apperr.ReasonInvalidSignature, err, "invalid webhook signature")
	}

	log := s.log.With(
		slog.String("event_id", event.ID),
		slog.String("event_type", event.ProviderType),
	)

	if s.alreadyProcessed(ctx, log, event.ID) {
		log.Info("duplicate webhook event acknowledged")
		s.metrics.WebhookEvent(string(event.Kind), "duplicate")
		return nil
	}

	outcome, err := s.apply(ctx, log, event)
	if err != nil {
		s.metrics.WebhookEvent(string(event.Kind), string(apperr.KindOf(err)))
		return err
	}
	s.metrics.WebhookEvent(string(event.Kind), outcome)
	s.markProcessed(ctx, log, event.ID)
	return nil
}

func (s *WebhookService) apply(ctx context.Context, log *slog.Logger, event *paymentprovider.Event) (string, error) {
	switch event.Kind {
	case paymentprovider.EventCheckoutCompleted:
		return s.applyCheckoutCompleted(ctx, log, event)
	case paymentprovider.EventSubscriptionCanceled:
		// Тариф при отмене не меняется.
		log.Info("subscription canceled",
			slog.String("subscription", event.SubscriptionRef),
			slog.String("user_uid", event.UserID))
		return "acknowledged", nil
	default:
		log.Info("unhandled webhook event")
		return "ignored", nil
	}
}

func (s *WebhookService) applyCheckoutCompleted(ctx context.Context, log *slog.Logger, event *paymentprovider.Event) (string, error) {
	if event.UserID == "" || event.SubscriptionRef == "" {
		log.Warn("checkout event without user or subscription",
			slog.String("user_uid", event.UserID),
			slog.String("subscription", event.SubscriptionRef))
		return "", apperr.New(apperr.KindBadRequest, apperr.ReasonMalformedEvent, "event is missing userId or subscription")
	}
	if _, err := uuid.Parse(event.UserID); err != nil {
		log.Warn("checkout event with invalid user id", slog.String("user_uid", event.UserID))
		return "", apperr.Wrap(apperr.KindBadRequest, apperr.ReasonMalformedEvent, err, "event userId is not a valid uuid")
	}

	user, err := s.users.UpgradeToPremium(ctx, event.UserID, event.SubscriptionRef)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Warn("checkout event for unknown user", slog.String("user_uid", event.UserID))
		return "unknown_user", nil
	case err != nil:
		log.Error("failed to upgrade user", slog.String("user_uid", event.UserID), sl.Err(err))
		return "", apperr.Internal(err, "failed to upgrade user")
	}
	log.Info("user upgraded to premium", slog.String("user_uid", user.UUID))

	s.notify(ctx, log, models.Notification{
		Kind:     models.NotificationPremiumActivated,
		Email:    user.Email,
		Username: user.Username,
	})
	return "upgraded", nil
}

func (s *WebhookService) alreadyProcessed(ctx context.Context, log *slog.Logger, eventID string) bool {
	if s.events == nil {
		return false
	}
	done, err := s.events.IsProcessed(ctx, eventID)
	if err != nil {
		log.Warn("failed to check processed event", sl.Err(err))
		return false
	}
	return done
}

func (s *WebhookService) markProcessed(ctx context.Context, log *slog.Logger, eventID string) {
	if s.events == nil {
		return
	}
	if err := s.events.MarkProcessed(ctx, eventID, s.eventTTL); err != nil {
		log.Warn("failed to mark event processed", sl.Err(err))
	}
}

func (s *WebhookService) notify(ctx context.Context, log *slog.Logger, n models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(context.WithoutCancel(ctx), n); err != nil {
		log.Error("failed to publish notification", slog.String("kind", string(n.Kind)), sl.Err(err))
	}
}
