package models

import "time"

// PermissionLevel — уровень доступа участника к списку задач.
type PermissionLevel string

const (
	PermissionReadOnly PermissionLevel = "READ_ONLY"
	PermissionEdit     PermissionLevel = "EDIT"
	PermissionAdmin    PermissionLevel = "ADMIN"
)

// TaskList — список задач; владелец задаётся при создании и больше не меняется.
type TaskList struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerUID    string    `json:"owner_uid"`
	CreatedAt   time.Time `json:"created_at"`
}

// Share связывает список задач с участником. Пара (TaskListID, UserUID) уникальна.
type Share struct {
	ID              int             `json:"id"`
	TaskListID      string          `json:"task_list_id"`
	UserUID         string          `json:"user_uid"`
	PermissionLevel PermissionLevel `json:"permission_level"`
	CreatedAt       time.Time       `json:"created_at"`
}

// DummyTaskList используется для приёма данных из JSON-запроса на создание списка.
type DummyTaskList struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}
