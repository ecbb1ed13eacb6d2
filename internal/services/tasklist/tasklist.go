// Package tasklist содержит бизнес-логику создания и просмотра списков задач.
package tasklist

import (
	"context"
	"strings"

	"github.com/magabrotheeeer/taskshare/internal/lib/apperr"
	"github.com/magabrotheeeer/taskshare/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Repository хранит списки задач.
type Repository interface {
	CreateTaskList(ctx context.Context, list models.TaskList) (*models.TaskList, error)
	ListTaskListsForUser(ctx context.Context, userUID string, limit, offset int) ([]*models.TaskList, error)
}

// Service управляет списками задач пользователя.
type Service struct {
	repo Repository
}

// New создаёт Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create создаёт список задач, владельцем которого становится ownerUID.
func (s *Service) Create(ctx context.Context, ownerUID string, req models.DummyTaskList) (*models.TaskList, error) {
	list, err := s.repo.CreateTaskList(ctx, models.TaskList{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		OwnerUID:    ownerUID,
	})
	if err != nil {
		return nil, apperr.Internal(err, "failed to create task list")
	}
	return list, nil
}

// List возвращает списки, которыми пользователь владеет или к которым ему открыт доступ.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.TaskList, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	lists, err := s.repo.ListTaskListsForUser(ctx, userUID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list task lists")
	}
	if lists == nil {
		lists = []*models.TaskList{}
	}
	return lists, nil
}
