package postgres_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/postgres"
	"github.com/get-relayed/go-relayed/postgres/internal"
)

// newTestDatabase starts a dedicated Postgres container, runs the module
// migrations on it and returns a connection pool, cleaned up with the test.
func newTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := internal.NewPostgresContainer(ctx)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	require.NoError(t, postgres.RunMigrations(container.ConnectionDSN))

	pool, err := pgxpool.New(ctx, container.ConnectionDSN)
	require.NoError(t, err)

	t.Cleanup(pool.Close)

	return pool
}
