//go:build integration

// Package dbtest sobe um Postgres descartável (testcontainers) já migrado.
package dbtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/shared/db"
)

// Postgres retorna uma conexão para um banco novo; o container é removido no fim do teste
func Postgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("predictions_test"),
		postgres.WithUsername("varsity"),
		postgres.WithPassword("varsity"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{"test-name": t.Name()}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := ctr.Terminate(stopCtx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pg, err := db.ConnectPostgres(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close() })

	require.NoError(t, db.MigrateUp(pg, zap.NewNop()))
	return pg
}
