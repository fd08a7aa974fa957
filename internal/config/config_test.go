package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("ADMIN_URL", "http://agent:8021")
	t.Setenv("ADMIN_ENFORCE_ACTIVE", "true")
	t.Setenv("ADMIN_TIMEOUT_SEC", "5")
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "http://agent:8021", cfg.Admin.URL)
	assert.True(t, cfg.Admin.EnforceActive)
	assert.Equal(t, 5*time.Second, cfg.Admin.Timeout())
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADMIN_URL", "")
	t.Setenv("ADMIN_ENFORCE_ACTIVE", "")
	t.Setenv("ADMIN_TIMEOUT_SEC", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:8021", cfg.Admin.URL)
	assert.False(t, cfg.Admin.EnforceActive)
	assert.Equal(t, 30*time.Second, cfg.Admin.Timeout())
}

func TestAdminConfig_Timeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), AdminConfig{}.Timeout())
	assert.Equal(t, time.Duration(0), AdminConfig{TimeoutSec: -1}.Timeout())
	assert.Equal(t, 2*time.Second, AdminConfig{TimeoutSec: 2}.Timeout())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
