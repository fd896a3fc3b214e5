package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsToMemoryStore(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:5050", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadPicksPostgresWhenDSNSet(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/tracker")
	t.Setenv("STORE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsStreamWithoutRedis(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("EVENTS_REDIS_STREAM", "tracker.events")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_BASE_PATH=/api/\nAUTH_BCRYPT_COST=4\n"), 0o600))
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("APP_BASE_PATH", "")
	t.Setenv("AUTH_BCRYPT_COST", "")
	// godotenv never overrides variables that are already set, including empty ones.
	require.NoError(t, os.Unsetenv("APP_BASE_PATH"))
	require.NoError(t, os.Unsetenv("AUTH_BCRYPT_COST"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/api", cfg.App.BasePath)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}
