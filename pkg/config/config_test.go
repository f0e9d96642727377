package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOT_SEQUENCE_BACKEND", "")
	t.Setenv("DB_MAX_CONNS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SequenceBackendPostgres, cfg.Ledger.SequenceBackend)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 500, cfg.Ledger.ActiveLotsLimit)
	assert.Contains(t, cfg.DB.ConnectionString(), "sslmode=disable")
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/lotes?sslmode=require")
	t.Setenv("LOT_SEQUENCE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("LEDGER_ACTIVE_LOTS_LIMIT", "50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/lotes?sslmode=require", cfg.DB.ConnectionString())
	assert.Equal(t, SequenceBackendRedis, cfg.Ledger.SequenceBackend)
	assert.Equal(t, 7, cfg.DB.MaxConns)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 50, cfg.Ledger.ActiveLotsLimit)
}

func TestValidate(t *testing.T) {
	base := Config{
		DB:     DBConfig{MaxConns: 5},
		Ledger: LedgerConfig{SequenceBackend: SequenceBackendPostgres},
	}
	require.NoError(t, base.Validate())

	redisNoURL := base
	redisNoURL.Ledger.SequenceBackend = SequenceBackendRedis
	assert.Error(t, redisNoURL.Validate())

	unknown := base
	unknown.Ledger.SequenceBackend = "etcd"
	assert.Error(t, unknown.Validate())
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5432, User: "u", Password: "p@ss/word", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%2Fword@h:5432/d?sslmode=disable", c.DSN())
}
