package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment does
// not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "APP_PORT", "PORT", "STORE_DRIVER", "MONGODB_URI", "MONGODB_DATABASE",
		"DB_USER", "DB_PASS", "DB_HOST", "DB_PORT", "DB_NAME", "JWT_SECRET", "JWT_TTL",
		"BCRYPT_COST", "CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "SENTRY_DSN",
		"SHUTDOWN_TIMEOUT", "CACHE_ENABLED", "CACHE_TTL", "CACHE_PREFIX",
		"CACHE_MAX_BODY_BYTES", "REDIS_HOST", "REDIS_PORT", "REDIS_ADDR",
		"REDIS_PASSWORD", "REDIS_DB", "REDIS_TLS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5001", c.Port)
	assert.Equal(t, DriverMongo, c.StoreDriver)
	assert.Equal(t, "allclear", c.MongoDatabase)
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, []string{"*"}, c.CORSOrigins)
	assert.Equal(t, 10*time.Second, c.ShutdownTimeout)
	assert.True(t, c.JWTSecretIsDev)
	assert.NotEmpty(t, c.JWTSecret)
	assert.False(t, c.Production())

	assert.True(t, c.Cache.Enabled)
	assert.Equal(t, 30*time.Second, c.Cache.TTL)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("MONGODB_URI", "mongodb://db")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.False(t, c.JWTSecretIsDev)
}

func TestLoad_DriverRequirements(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")

	t.Setenv("STORE_DRIVER", "mysql")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")

	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "allclear")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3306", c.DBPort)

	t.Setenv("STORE_DRIVER", "memory")
	_, err = Load()
	require.NoError(t, err)

	t.Setenv("STORE_DRIVER", "postgres")
	_, err = Load()
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")
}

func TestLoad_Malformed(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("BCRYPT_COST", "high")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_TTL")
	assert.Contains(t, err.Error(), "BCRYPT_COST")
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.False(t, c.Cache.Enabled)
	assert.Equal(t, "cache:6380", c.Redis.Addr)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nAPP_PORT=7000\n"), 0o600))
	t.Setenv("APP_PORT", "9000")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "9000", os.Getenv("APP_PORT"))
}
