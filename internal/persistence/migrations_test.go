package persistence

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		body, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+entry.Name())
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", entry.Name())
		assert.Contains(t, string(body), "-- +goose Down", entry.Name())
	}
}

func TestEmbeddedMigrations_CreateEveryTable(t *testing.T) {
	var all strings.Builder
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)
	for _, entry := range entries {
		body, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+entry.Name())
		require.NoError(t, err)
		all.Write(body)
	}

	for _, table := range []string{"users", "complaints", "complaint_comments", "locations", "master_data", "mails"} {
		assert.Contains(t, all.String(), "CREATE TABLE "+table+" (", table)
	}
}

func TestRunMigrations_WithoutPoolIsNoop(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestPostgres_NilSafe(t *testing.T) {
	var pg *Postgres
	assert.Nil(t, pg.PoolHandle())
	assert.ErrorIs(t, pg.Ping(context.Background()), ErrNoDatabase)
	assert.NotPanics(t, pg.Close)
	assert.ErrorIs(t, WithTx(context.Background(), nil, nil), ErrNoDatabase)
}
