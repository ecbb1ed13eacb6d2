package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

const (
	paddleTransactionCompleted = "transaction.completed"
	paddleSubscriptionCanceled = "subscription.canceled"
)

// PaddleConfig содержит настройки Paddle Billing.
type PaddleConfig struct {
	APIKey        string
	WebhookSecret string
	Sandbox       bool
	// CheckoutURL — страница сайта с Paddle.js, на которую ведёт ссылка оплаты.
	CheckoutURL string
}

// PaddleProvider реализует Provider поверх paddle-go-sdk.
type PaddleProvider struct {
	client      *paddle.SDK
	verifier    *paddle.WebhookVerifier
	checkoutURL string
}

// NewPaddleProvider создаёт провайдера. Без APIKey доступна только проверка вебхуков.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.WebhookSecret == "" {
		return nil, errors.New("paddle webhook secret is required")
	}
	p := &PaddleProvider{
		verifier:    paddle.NewWebhookVerifier(cfg.WebhookSecret),
		checkoutURL: cfg.CheckoutURL,
	}
	if cfg.APIKey == "" {
		return p, nil
	}

	var (
		sdk *paddle.SDK
		err error
	)
	if cfg.Sandbox {
		sdk, err = paddle.NewSandbox(cfg.APIKey)
	} else {
		sdk, err = paddle.New(cfg.APIKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}
	p.client = sdk
	return p, nil
}

// SignatureHeader возвращает заголовок Paddle-Signature.
func (p *PaddleProvider) SignatureHeader() string {
	return "Paddle-Signature"
}

// CreateCheckoutSession создаёт транзакцию и возвращает ссылку на её оплату.
func (p *PaddleProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	const op = "paymentprovider.paddle.CreateCheckoutSession"
	if p.client == nil {
		return nil, fmt.Errorf("%s: paddle api key is not configured", op)
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: 1,
	})
	txReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			MetadataUserID: req.UserID,
			"email":        req.Email,
		},
	}
	if p.checkoutURL != "" {
		txReq.Checkout = &paddle.TransactionCheckout{URL: paddle.PtrTo(p.checkoutURL)}
	}

	tx, err := p.client.TransactionsClient.CreateTransaction(ctx, txReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if tx.Checkout == nil || tx.Checkout.URL == nil {
		return nil, fmt.Errorf("%s: no checkout url returned", op)
	}
	return &CheckoutSession{ID: tx.ID, URL: *tx.Checkout.URL}, nil
}

type paddleEvent struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Data      struct {
		ID             string         `json:"id"`
		SubscriptionID string         `json:"subscription_id"`
		CustomData     map[string]any `json:"custom_data"`
	} `json:"data"`
}

// ParseWebhook проверяет подпись Paddle-Signature и нормализует событие.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	const op = "paymentprovider.paddle.ParseWebhook"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set(p.SignatureHeader(), signature)

	ok, err := p.verifier.Verify(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidSignature, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	var ev paddleEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedEvent, err)
	}
	if ev.EventID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedEvent)
	}

	out := &Event{
		ID:           ev.EventID,
		ProviderType: ev.EventType,
		Kind:         EventOther,
	}
	userID, _ := ev.Data.CustomData[MetadataUserID].(string)
	switch ev.EventType {
	case paddleTransactionCompleted:
		out.Kind = EventCheckoutCompleted
		out.UserID = userID
		out.SubscriptionRef = ev.Data.SubscriptionID
	case paddleSubscriptionCanceled:
		out.Kind = EventSubscriptionCanceled
		out.UserID = userID
		out.SubscriptionRef = ev.Data.ID
	}
	return out, nil
}
