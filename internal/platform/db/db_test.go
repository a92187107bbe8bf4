package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	cfg, err := Options{
		DSN:      "postgres://u:p@localhost:5432/hr?sslmode=disable",
		MaxConns: 4,
		AppName:  "odyssey-hr",
	}.poolConfig()
	require.NoError(t, err)
	require.EqualValues(t, 4, cfg.MaxConns)
	require.Equal(t, "odyssey-hr", cfg.ConnConfig.RuntimeParams["application_name"])
	require.Equal(t, "hr", cfg.ConnConfig.Database)

	_, err = Options{DSN: "://bad"}.poolConfig()
	require.Error(t, err)
}

func TestPendingMigrations(t *testing.T) {
	require.Len(t, pendingMigrations(0), len(migrations))
	require.Len(t, pendingMigrations(2), len(migrations)-2)
	require.Empty(t, pendingMigrations(len(migrations)))
	require.Empty(t, pendingMigrations(len(migrations)+3))
}
