package models

import "time"

// NotificationKind — тип уведомления, публикуемого в очередь.
type NotificationKind string

const (
	NotificationTrialActivated   NotificationKind = "trial_activated"
	NotificationShareGranted     NotificationKind = "share_granted"
	NotificationPremiumActivated NotificationKind = "premium_activated"
	NotificationTrialEnding      NotificationKind = "trial_ending"
)

// Notification — сообщение для отправителя писем.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Email       string           `json:"email"`
	Username    string           `json:"username"`
	ListName    string           `json:"list_name,omitempty"`
	SharedBy    string           `json:"shared_by,omitempty"`
	TrialEndsAt *time.Time       `json:"trial_ends_at,omitempty"`
}
