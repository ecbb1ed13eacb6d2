package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/taskshare/internal/models"
)

// CreateTaskList сохраняет список задач и возвращает его с присвоенным ID.
func (s *Storage) CreateTaskList(ctx context.Context, list models.TaskList) (*models.TaskList, error) {
	const op = "storage.CreateTaskList"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO task_lists (name, description, owner_uid)
			  VALUES ($1, $2, $3)
			  RETURNING id, name, description, owner_uid, created_at`
	res := &models.TaskList{}
	if err := s.DB.QueryRowContext(ctx, query, list.Name, list.Description, list.OwnerUID).
		Scan(&res.ID, &res.Name, &res.Description, &res.OwnerUID, &res.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return res, nil
}

// GetTaskList возвращает список задач по ID.
func (s *Storage) GetTaskList(ctx context.Context, listID string) (*models.TaskList, error) {
	const op = "storage.GetTaskList"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, owner_uid, created_at
			  FROM task_lists
			  WHERE id = $1`
	res := &models.TaskList{}
	if err := s.DB.QueryRowContext(ctx, query, listID).
		Scan(&res.ID, &res.Name, &res.Description, &res.OwnerUID, &res.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return res, nil
}

// ListTaskListsForUser возвращает списки, которыми пользователь владеет
// или к которым ему открыт доступ.
func (s *Storage) ListTaskListsForUser(ctx context.Context, userUID string, limit, offset int) ([]*models.TaskList, error) {
	const op = "storage.ListTaskListsForUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT DISTINCT l.id, l.name, l.description, l.owner_uid, l.created_at
			  FROM task_lists l
			  LEFT JOIN task_list_shares s ON s.task_list_id = l.id
			  WHERE l.owner_uid = $1 OR s.user_uid = $1
			  ORDER BY l.created_at DESC, l.id
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.TaskList
	for rows.Next() {
		var l models.TaskList
		if err = rows.Scan(&l.ID, &l.Name, &l.Description, &l.OwnerUID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
