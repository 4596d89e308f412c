package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const usersSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

func setupUserPostgresContainer(t *testing.T) *sqlx.DB {
	t.Helper()
	tc.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable&client_encoding=UTF8", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(usersSchema)
	require.NoError(t, err)

	return db
}

func TestUserRepositories_Postgres(t *testing.T) {
	db := setupUserPostgresContainer(t)
	ctx := context.Background()

	readRepo := NewUserReadRepository(db, nil)
	writeRepo := NewUserWriteRepository(db, nil)

	t.Run("AddThenDelete", func(t *testing.T) {
		start := time.Now().Add(-time.Second)

		ada, err := writeRepo.Save(ctx, "Ada", "ada@example.com")
		require.NoError(t, err)
		assert.NotZero(t, ada.ID)
		assert.False(t, ada.CreatedAt.Before(start))

		users, err := readRepo.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Ada", users[0].Name)
		assert.Equal(t, "ada@example.com", users[0].Email)

		affected, err := writeRepo.Delete(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		users, err = readRepo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		affected, err := writeRepo.Delete(ctx, 999999)
		require.NoError(t, err)
		assert.Zero(t, affected)
	})

	t.Run("OrderNewestFirstWithTies", func(t *testing.T) {
		_, err := db.Exec(`TRUNCATE users`)
		require.NoError(t, err)

		_, err = db.Exec(`
			INSERT INTO users (name, email, created_at) VALUES
				('old', 'old@example.com', '2024-01-01T00:00:00Z'),
				('tie-a', 'a@example.com', '2024-06-01T00:00:00Z'),
				('tie-b', 'b@example.com', '2024-06-01T00:00:00Z')
		`)
		require.NoError(t, err)

		users, err := readRepo.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, []string{"tie-b", "tie-a", "old"}, []string{users[0].Name, users[1].Name, users[2].Name})
	})

	t.Run("ServerVersion", func(t *testing.T) {
		version, err := NewServerInfoRepository(db, nil).ServerVersion(ctx)
		require.NoError(t, err)
		assert.Regexp(t, `^15\.`, version)
	})
}
