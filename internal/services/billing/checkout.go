package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
	"github.com/magabrotheeeer/taskshare/internal/lib/metrics"
	"github.com/magabrotheeeer/taskshare/internal/lib/sl"
	"github.com/magabrotheeeer/taskshare/internal/paymentprovider"
	"github.com/magabrotheeeer/taskshare/internal/storage/repository"
)

// ErrCheckoutDisabled возвращается, если не задан идентификатор цены.
var ErrCheckoutDisabled = errors.New("checkout is not configured")

// CheckoutConfig задаёт параметры страницы оплаты.
type CheckoutConfig struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

// CheckoutService создаёт у провайдера страницы оплаты подписки PREMIUM.
type CheckoutService struct {
	log      *slog.Logger
	users    UserStore
	provider paymentprovider.Provider
	cfg      CheckoutConfig
	metrics  *metrics.Metrics
}

// NewCheckoutService создаёт CheckoutService или возвращает ErrCheckoutDisabled.
func NewCheckoutService(log *slog.Logger, users UserStore, provider paymentprovider.Provider, cfg CheckoutConfig, m *metrics.Metrics) (*CheckoutService, error) {
	if cfg.PriceID == "" {
		return nil, ErrCheckoutDisabled
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &CheckoutService{
		log:      log,
		users:    users,
		provider: provider,
		cfg:      cfg,
		metrics:  m,
	}, nil
}

// CreateCheckoutSession возвращает страницу оплаты для пользователя userUID.
// В метаданные сессии записывается uid, по которому вебхук найдёт пользователя.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userUID string) (*paymentprovider.CheckoutSession, error) {
	sess, err := s.createCheckoutSession(ctx, userUID)
	if err != nil {
		s.metrics.CheckoutSession(string(apperr.KindOf(err)))
		return nil, err
	}
	s.metrics.CheckoutSession("created")
	return sess, nil
}

func (s *CheckoutService) createCheckoutSession(ctx context.Context, userUID string) (*paymentprovider.CheckoutSession, error) {
	user, err := s.users.GetUser(ctx, userUID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.New(apperr.KindNotFound, apperr.ReasonUserNotFound, "user not found")
	case err != nil:
		s.log.Error("failed to load user for checkout", slog.String("user_uid", userUID), sl.Err(err))
		return nil, apperr.Internal(err, "failed to load user")
	}
	if user.IsPremium() {
		return nil, apperr.New(apperr.KindBadRequest, apperr.ReasonAlreadyPremium, "user already has premium plan")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	sess, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CheckoutRequest{
		UserID:     user.UUID,
		Email:      user.Email,
		PriceID:    s.cfg.PriceID,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		s.log.Error("payment provider failed to create checkout session", slog.String("user_uid", userUID), sl.Err(err))
		return nil, apperr.Upstream(err, "failed to connect to payment service")
	}
	s.log.Info("checkout session created", slog.String("user_uid", userUID), slog.String("session_id", sess.ID))
	return sess, nil
}
