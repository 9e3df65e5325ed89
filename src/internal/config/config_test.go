package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "LOCK_BACKEND", "HTTP_ADDR", "DATABASE_DSN", "SHUTDOWN_TIMEOUT", "BOOTSTRAP_ADMIN_EMAIL", "BOOTSTRAP_ADMIN_PASSWORD"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, LockMemory, cfg.LockBackend)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Contains(t, cfg.DatabaseDSN, "dbname=ledger_loan_db")
	assert.False(t, cfg.BootstrapAdmin.Enabled())
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "cassandra")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadBootstrapAdmin(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "  Admin@Bank.Local ")
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "changeit")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMongo, cfg.StoreBackend)
	assert.Equal(t, "admin@bank.local", cfg.BootstrapAdmin.Email)
	assert.True(t, cfg.BootstrapAdmin.Enabled())
}

func TestNormalizeConnectionString(t *testing.T) {
	got := normalizeConnectionString("Host=db;Port=5433;Database=ledger;Username=app;Password=pw;CommandTimeout=15")
	assert.Equal(t, "host=db port=5433 dbname=ledger user=app password=pw statement_timeout=15s sslmode=disable", got)

	url := "postgres://app:pw@db:5432/ledger?sslmode=require"
	assert.Equal(t, url, normalizeConnectionString(url))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEDGER_TEST_FROM_FILE=file\nLEDGER_TEST_PRESET=file\n"), 0o600))
	t.Setenv("LEDGER_TEST_PRESET", "process")
	t.Cleanup(func() { _ = os.Unsetenv("LEDGER_TEST_FROM_FILE") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "file", os.Getenv("LEDGER_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("LEDGER_TEST_PRESET"))

	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
