package share

import (
	"context"
	"time"

	"github.com/magabrotheeeer/taskshare/internal/entitlement"
	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
	"github.com/magabrotheeeer/taskshare/internal/models"
)

// TrialOutcome описывает результат попытки активации пробного периода.
type TrialOutcome struct {
	Activated   bool
	ActivatedAt time.Time
}

// TrialActivator однократно запускает пробный период пользователя.
type TrialActivator struct {
	store TrialStore
}

// NewTrialActivator создаёт TrialActivator.
func NewTrialActivator(store TrialStore) *TrialActivator {
	return &TrialActivator{store: store}
}

// ActivateTrialIfNeeded запускает пробный период, если пользователь на тарифе FREE
// и период ещё не активировался. Запись выполняется одним условным UPDATE,
// поэтому из конкурентных вызовов успешен ровно один.
func (a *TrialActivator) ActivateTrialIfNeeded(ctx context.Context, user *models.User, now time.Time) (TrialOutcome, error) {
	if entitlement.Evaluate(user, now) != entitlement.StateTrialNotStarted {
		return TrialOutcome{}, nil
	}

	ok, err := a.store.ActivateTrial(ctx, user.UUID, now)
	if err != nil {
		return TrialOutcome{}, apperr.Internal(err, "failed to activate trial")
	}
	if !ok {
		return TrialOutcome{}, nil
	}
	return TrialOutcome{Activated: true, ActivatedAt: now}, nil
}
