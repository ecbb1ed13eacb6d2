// Package billing связывает пользователей с платёжным провайдером:
// создаёт страницы оплаты и применяет подтверждённые провайдером события к тарифу.
package billing

import (
	"context"
	"time"

	"github.com/magabrotheeeer/taskshare/internal/models"
)

// UserStore описывает операции с пользователями, нужные биллингу.
type UserStore interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpgradeToPremium(ctx context.Context, userUID, subscriptionID string) (*models.User, error)
}

// EventStore запоминает обработанные события провайдера.
type EventStore interface {
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error
}

// Notifier публикует уведомления пользователям.
type Notifier interface {
	Publish(ctx context.Context, n models.Notification) error
}
