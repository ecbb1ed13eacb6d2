// Package entitlement вычисляет право пользователя на совместный доступ к спискам задач.
//
// Состояние вычисляется один раз из (тариф, момент активации пробного периода, now),
// а решения принимаются по этому состоянию, а не по сырым полям пользователя.
package entitlement

import (
	"time"

	"github.com/magabrotheeeer/taskshare/internal/models"
)

// TrialDuration — длительность пробного периода.
const TrialDuration = 30 * 24 * time.Hour

// State — состояние доступа пользователя к функции совместного доступа.
type State string

const (
	StatePremium         State = "PREMIUM"
	StateTrialActive     State = "TRIAL_ACTIVE"
	StateTrialExpired    State = "TRIAL_EXPIRED"
	StateTrialNotStarted State = "TRIAL_NOT_STARTED"
)

// Evaluate возвращает состояние доступа пользователя на момент now.
func Evaluate(user *models.User, now time.Time) State {
	if user.Plan == models.PlanPremium {
		return StatePremium
	}
	if user.PremiumTrialActivatedAt == nil {
		return StateTrialNotStarted
	}
	if now.Sub(*user.PremiumTrialActivatedAt) < TrialDuration {
		return StateTrialActive
	}
	return StateTrialExpired
}

// Allows сообщает, даёт ли состояние право делиться списками.
//
// StateTrialNotStarted разрешает доступ: первая попытка поделиться списком
// запускает пробный период, поэтому отказ возможен только после его истечения.
func (s State) Allows() bool {
	switch s {
	case StatePremium, StateTrialActive, StateTrialNotStarted:
		return true
	default:
		return false
	}
}

// HasSharingAccess сообщает, может ли пользователь делиться списками на момент now.
func HasSharingAccess(user *models.User, now time.Time) bool {
	return Evaluate(user, now).Allows()
}

// TrialEndsAt возвращает момент окончания пробного периода или nil,
// если пробный период не активировался.
func TrialEndsAt(user *models.User) *time.Time {
	if user.PremiumTrialActivatedAt == nil {
		return nil
	}
	end := user.PremiumTrialActivatedAt.Add(TrialDuration)
	return &end
}
