//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/britrip/hotelier/internal/infrastructure/config"
	"github.com/britrip/hotelier/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

func TestGormPortfolioStore_PostgresContainer(t *testing.T) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("hotelier"),
		tcpostgres.WithUsername("hotelier"),
		tcpostgres.WithPassword("hotelier"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer sqlDB.Close()

	m, err := migration.New(sqlDB, migrationsDir(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	db, err := NewDatabase(&config.DatabaseConfig{Driver: "postgres", DSN: dsn, MaxOpenConns: 4, MaxIdleConns: 2}, nil)
	require.NoError(t, err)
	defer db.Close()

	store := NewGormPortfolioStore(db.DB)
	require.NoError(t, store.Save(ctx, "sess-1", sampleRecords()))
	require.NoError(t, store.Save(ctx, "sess-1", sampleRecords()[:1]))

	recs, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Burj Al Arab", recs[0].Name)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	recs, err = store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
