package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/taskshare/internal/models"
)

const userColumns = `uid, email, username, password_hash, plan,
			      premium_trial_activated_at, stripe_subscription_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var trialActivatedAt sql.NullTime
	var subscriptionID sql.NullString
	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash, &u.Plan,
		&trialActivatedAt, &subscriptionID, &u.CreatedAt); err != nil {
		return nil, err
	}
	if trialActivatedAt.Valid {
		t := trialActivatedAt.Time
		u.PremiumTrialActivatedAt = &t
	}
	if subscriptionID.Valid {
		id := subscriptionID.String
		u.StripeSubscriptionID = &id
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя с тарифом FREE и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, username, password_hash, plan)
			  VALUES ($1, $2, $3, 'FREE')
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, mapError(err))
	}
	return newID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// ActivateTrial атомарно фиксирует момент активации пробного периода.
// Запись происходит, только если пользователь на тарифе FREE и пробный период
// ещё не активировался. Возвращает true, если строка была обновлена.
func (s *Storage) ActivateTrial(ctx context.Context, userUID string, at time.Time) (bool, error) {
	const op = "storage.ActivateTrial"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET premium_trial_activated_at = $2
			  WHERE uid = $1 AND plan = 'FREE' AND premium_trial_activated_at IS NULL`
	res, err := s.DB.ExecContext(ctx, query, userUID, at)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// UpgradeToPremium переводит пользователя на тариф PREMIUM и сохраняет
// идентификатор подписки. Повторный вызов с теми же данными ничего не меняет.
func (s *Storage) UpgradeToPremium(ctx context.Context, userUID, subscriptionID string) (*models.User, error) {
	const op = "storage.UpgradeToPremium"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET plan = 'PREMIUM', stripe_subscription_id = $2
			  WHERE uid = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID, subscriptionID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// FindTrialsEndingBetween находит пользователей FREE, чей пробный период
// заканчивается в интервале [from, to).
func (s *Storage) FindTrialsEndingBetween(ctx context.Context, from, to time.Time, trialDuration time.Duration) ([]*models.User, error) {
	const op = "storage.FindTrialsEndingBetween"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE plan = 'FREE'
			    AND premium_trial_activated_at IS NOT NULL
			    AND premium_trial_activated_at >= $1
			    AND premium_trial_activated_at < $2`
	rows, err := s.DB.QueryContext(ctx, query, from.Add(-trialDuration), to.Add(-trialDuration))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
