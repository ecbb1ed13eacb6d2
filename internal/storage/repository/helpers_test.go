package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/taskshare/internal/migrations"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя на тарифе FREE и возвращает его UID
func (f *TestDataFactory) CreateUser(t *testing.T, username string) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, 'hashedpassword') RETURNING uid`,
		username, username+"@example.com").Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreatePremiumUser создает тестового пользователя на тарифе PREMIUM
func (f *TestDataFactory) CreatePremiumUser(t *testing.T, username string) string {
	uid := f.CreateUser(t, username)
	_, err := f.storage.DB.Exec(`UPDATE users SET plan = 'PREMIUM' WHERE uid = $1`, uid)
	require.NoError(t, err)
	return uid
}

// SetTrialActivatedAt выставляет момент активации пробного периода напрямую
func (f *TestDataFactory) SetTrialActivatedAt(t *testing.T, uid string, at time.Time) {
	_, err := f.storage.DB.Exec(`UPDATE users SET premium_trial_activated_at = $2 WHERE uid = $1`, uid, at)
	require.NoError(t, err)
}

// CreateTaskList создает тестовый список задач и возвращает его ID
func (f *TestDataFactory) CreateTaskList(t *testing.T, ownerUID, name string) string {
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO task_lists (name, owner_uid)
		VALUES ($1, $2) RETURNING id`, name, ownerUID).Scan(&id)
	require.NoError(t, err)
	return id
}

// setupTestDatabase поднимает контейнер PostgreSQL и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err, "failed to create storage")

	projectRoot, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(projectRoot, "migrations")))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}
