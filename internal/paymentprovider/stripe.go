package paymentprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	stripeCheckoutCompleted   = "checkout.session.completed"
	stripeSubscriptionDeleted = "customer.subscription.deleted"
)

// StripeConfig содержит настройки Stripe.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
	// BaseURL переопределяет адрес API, пусто — боевой адрес Stripe.
	BaseURL string
}

// StripeProvider реализует Provider поверх stripe-go.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

// NewStripeProvider создаёт провайдера. Без SecretKey доступна только проверка вебхуков.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.WebhookSecret == "" {
		return nil, errors.New("stripe webhook secret is required")
	}
	p := &StripeProvider{webhookSecret: cfg.WebhookSecret}
	if cfg.SecretKey == "" {
		return p, nil
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	backends := stripe.NewBackends(httpClient)
	if cfg.BaseURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:        stripe.String(cfg.BaseURL),
			HTTPClient: httpClient,
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}
	p.api = client.New(cfg.SecretKey, backends)
	return p, nil
}

// SignatureHeader возвращает заголовок Stripe-Signature.
func (p *StripeProvider) SignatureHeader() string {
	return "Stripe-Signature"
}

// CreateCheckoutSession создаёт сессию Checkout в режиме подписки.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	const op = "paymentprovider.stripe.CreateCheckoutSession"
	if p.api == nil {
		return nil, fmt.Errorf("%s: stripe secret key is not configured", op)
	}

	metadata := map[string]string{MetadataUserID: req.UserID}
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Metadata = metadata
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook проверяет подпись Stripe-Signature и нормализует событие.
func (p *StripeProvider) ParseWebhook(_ context.Context, payload []byte, signature string) (*Event, error) {
	const op = "paymentprovider.stripe.ParseWebhook"
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidSignature, err)
	}
	if event.ID == "" || event.Data == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedEvent)
	}

	out := &Event{
		ID:           event.ID,
		ProviderType: string(event.Type),
		Kind:         EventOther,
	}
	switch string(event.Type) {
	case stripeCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedEvent, err)
		}
		out.Kind = EventCheckoutCompleted
		out.UserID = sess.Metadata[MetadataUserID]
		if sess.Subscription != nil {
			out.SubscriptionRef = sess.Subscription.ID
		}
	case stripeSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedEvent, err)
		}
		out.Kind = EventSubscriptionCanceled
		out.UserID = sub.Metadata[MetadataUserID]
		out.SubscriptionRef = sub.ID
	}
	return out, nil
}
