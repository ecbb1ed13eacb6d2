package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func getTestDB(t *testing.T) (*sql.DB, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	cleanup := func() {
		_ = db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

func getMigrationsPath(t *testing.T) string {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "migrations")
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestRunMigrations(t *testing.T) {
	db, cleanup := getTestDB(t)
	defer cleanup()

	err := Run(db, getMigrationsPath(t))
	require.NoError(t, err)

	for _, table := range []string{"users", "task_lists", "tasks", "task_list_shares"} {
		require.True(t, tableExists(t, db, table), "table %s should exist", table)
	}

	var uid, listID string
	require.NoError(t, db.QueryRow(`INSERT INTO users (email, username, password_hash)
		VALUES ('a@example.com', 'alice', 'hash') RETURNING uid`).Scan(&uid))

	var plan string
	require.NoError(t, db.QueryRow(`SELECT plan FROM users WHERE uid = $1`, uid).Scan(&plan))
	require.Equal(t, "FREE", plan)

	require.NoError(t, db.QueryRow(`INSERT INTO task_lists (name, owner_uid)
		VALUES ('groceries', $1) RETURNING id`, uid).Scan(&listID))

	var bob string
	require.NoError(t, db.QueryRow(`INSERT INTO users (email, username, password_hash)
		VALUES ('b@example.com', 'bob', 'hash') RETURNING uid`).Scan(&bob))

	_, err = db.Exec(`INSERT INTO task_list_shares (task_list_id, user_uid) VALUES ($1, $2)`, listID, bob)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO task_list_shares (task_list_id, user_uid) VALUES ($1, $2)`, listID, bob)
	require.Error(t, err, "duplicate share must violate the unique constraint")

	_, err = db.Exec(`DELETE FROM task_lists WHERE id = $1`, listID)
	require.NoError(t, err)
	var shares int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM task_list_shares`).Scan(&shares))
	require.Equal(t, 0, shares, "shares must be removed together with the list")
}

func TestMigrationIdempotency(t *testing.T) {
	db, cleanup := getTestDB(t)
	defer cleanup()

	path := getMigrationsPath(t)

	require.NoError(t, Run(db, path))
	require.NoError(t, Run(db, path), "running migrations twice should not fail")
	require.True(t, tableExists(t, db, "task_list_shares"))
}
