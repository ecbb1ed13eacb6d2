package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/taskshare/internal/models"
)

// CountSharesByList возвращает количество участников списка.
func (s *Storage) CountSharesByList(ctx context.Context, listID string) (int, error) {
	const op = "storage.CountSharesByList"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM task_list_shares WHERE task_list_id = $1`
	if err := s.DB.QueryRowContext(ctx, query, listID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ShareExists сообщает, открыт ли уже доступ к списку пользователю.
func (s *Storage) ShareExists(ctx context.Context, listID, userUID string) (bool, error) {
	const op = "storage.ShareExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (
			      SELECT 1 FROM task_list_shares WHERE task_list_id = $1 AND user_uid = $2
			  )`
	if err := s.DB.QueryRowContext(ctx, query, listID, userUID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateShare сохраняет запись о совместном доступе.
// Повторная пара (список, пользователь) возвращает ErrAlreadyExists.
func (s *Storage) CreateShare(ctx context.Context, share models.Share) (*models.Share, error) {
	const op = "storage.CreateShare"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO task_list_shares (task_list_id, user_uid, permission_level)
			  VALUES ($1, $2, $3)
			  RETURNING id, task_list_id, user_uid, permission_level, created_at`
	res := &models.Share{}
	if err := s.DB.QueryRowContext(ctx, query, share.TaskListID, share.UserUID, share.PermissionLevel).
		Scan(&res.ID, &res.TaskListID, &res.UserUID, &res.PermissionLevel, &res.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return res, nil
}

// ListShares возвращает участников списка в порядке добавления.
func (s *Storage) ListShares(ctx context.Context, listID string) ([]*models.Share, error) {
	const op = "storage.ListShares"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, task_list_id, user_uid, permission_level, created_at
			  FROM task_list_shares
			  WHERE task_list_id = $1
			  ORDER BY created_at, id`
	rows, err := s.DB.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Share
	for rows.Next() {
		var sh models.Share
		if err = rows.Scan(&sh.ID, &sh.TaskListID, &sh.UserUID, &sh.PermissionLevel, &sh.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &sh)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
