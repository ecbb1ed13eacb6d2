// Package models содержит доменные структуры: пользователя с его тарифом,
// списки задач, совместный доступ к ним и уведомления.
package models

import "time"

// Plan — тариф пользователя.
type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanPremium Plan = "PREMIUM"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID                    string     // Уникальный идентификатор пользователя
	Email                   string     // Электронная почта (уникальная)
	Username                string     // Имя пользователя (уникальное)
	PasswordHash            string     // Хэш пароля пользователя
	Plan                    Plan       // Текущий тариф
	PremiumTrialActivatedAt *time.Time // Момент активации пробного периода, устанавливается один раз
	StripeSubscriptionID    *string    // Идентификатор подписки у платёжного провайдера
	CreatedAt               time.Time
}

// IsPremium сообщает, оплачен ли тариф PREMIUM.
func (u *User) IsPremium() bool {
	return u.Plan == PlanPremium
}
