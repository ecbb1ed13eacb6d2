// Package paymentprovider скрывает конкретного платёжного провайдера за общим интерфейсом:
// создание страницы оплаты и проверка входящих вебхуков.
package paymentprovider

import (
	"context"
	"errors"
)

// MetadataUserID задаёт ключ метаданных, по которому вебхук находит пользователя.
const MetadataUserID = "userId"

var (
	// ErrInvalidSignature возвращается, когда подпись вебхука не прошла проверку.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedEvent возвращается для подписанного, но неразбираемого события.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

// EventKind нормализует тип события провайдера.
type EventKind string

const (
	EventCheckoutCompleted    EventKind = "checkout_completed"
	EventSubscriptionCanceled EventKind = "subscription_canceled"
	EventOther                EventKind = "other"
)

// CheckoutRequest — параметры страницы оплаты подписки.
type CheckoutRequest struct {
	UserID     string
	Email      string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession — созданная у провайдера страница оплаты.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Event описывает проверенное событие провайдера.
type Event struct {
	ID              string
	Kind            EventKind
	ProviderType    string
	UserID          string
	SubscriptionRef string
}

// Provider создаёт страницы оплаты и разбирает вебхуки.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)
	// SignatureHeader возвращает имя HTTP-заголовка с подписью вебхука.
	SignatureHeader() string
}
