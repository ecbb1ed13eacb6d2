package share

import (
	"context"
	"time"

	"github.com/magabrotheeeer/taskshare/internal/models"
)

// TrialStore фиксирует активацию пробного периода.
type TrialStore interface {
	ActivateTrial(ctx context.Context, userUID string, at time.Time) (bool, error)
}

// ShareCounter считает участников списка.
type ShareCounter interface {
	CountSharesByList(ctx context.Context, listID string) (int, error)
}

// Repository объединяет операции хранилища, нужные сервису совместного доступа.
type Repository interface {
	TrialStore
	ShareCounter
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetTaskList(ctx context.Context, listID string) (*models.TaskList, error)
	ShareExists(ctx context.Context, listID, userUID string) (bool, error)
	CreateShare(ctx context.Context, share models.Share) (*models.Share, error)
	ListShares(ctx context.Context, listID string) ([]*models.Share, error)
}

// Notifier публикует уведомления для отправителя писем.
type Notifier interface {
	Publish(ctx context.Context, n models.Notification) error
}
