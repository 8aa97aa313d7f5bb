//go:build e2e

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/internal/portal/store/drivers/postgres"
	"github.com/gracechurch/portal/internal/portal/store/storetest"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a disposable Postgres container and returns its URL.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "portal",
			"POSTGRES_PASSWORD": "portal",
			"POSTGRES_DB":       "portal",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://portal:portal@%s:%s/portal?sslmode=disable", host, port.Port())
}

func TestStore(t *testing.T) {
	url := startPostgres(t)

	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := postgres.NewStore(context.Background(), url)
		require.NoError(t, err)
		require.NoError(t, s.ApplyMigrations())
		truncate(t, s)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func truncate(t *testing.T, s *postgres.Store) {
	t.Helper()
	require.NoError(t, s.Exec(context.Background(),
		`TRUNCATE allowed_users, profiles, email_logs, email_sends`))
}
