package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "REDIS_DB", "LOG_FORMAT", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, ModeOffline, c.Mode)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, 0, c.RedisDB)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, 15*time.Second, c.ShutdownTimeout)
	assert.Equal(t, c.CORSOriginsOffline, c.CORSOrigins())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ENABLE_LOCAL_AUTH", "no")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")
	t.Setenv("SHUTDOWN_TIMEOUT", "bogus")

	c := FromEnv()
	assert.Equal(t, ModeOnline, c.Mode)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, 3, c.RedisDB)
	assert.False(t, c.EnableLocalAuth)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins())
	assert.Equal(t, 15*time.Second, c.ShutdownTimeout)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	f := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(f, []byte("EXAMSIM_DOTENV_PROBE=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("EXAMSIM_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(f))
	assert.Equal(t, "loaded", os.Getenv("EXAMSIM_DOTENV_PROBE"))
}
