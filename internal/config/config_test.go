package config

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/google/logger"
	"github.com/stretchr/testify/assert"
)

var logged bytes.Buffer

func TestMain(m *testing.M) {
	l := logger.Init("config-test", false, false, &logged)
	code := m.Run()
	l.Close()
	os.Exit(code)
}

func TestEnvParsingFallsBackWithWarning(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("SECURE_RANDOM", "maybe")

	assert.Equal(t, 7, envInt("REDIS_DB", 7))
	assert.True(t, envBool("SECURE_RANDOM", true))
	assert.Contains(t, logged.String(), `REDIS_DB="two" is not a number`)
	assert.Contains(t, logged.String(), `SECURE_RANDOM="maybe" is not a boolean`)
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_SSLMODE", "REDIS_ADDR", "HISTORY_LIMIT", "SETTLE_DELAY_MS", "DB_HOST"} {
		t.Setenv(k, "")
	}
	t.Setenv("STORE_BACKEND", "Redis")

	c := Load()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "redis", c.StoreBackend)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, 200, c.HistoryLimit)
	assert.Equal(t, 3*time.Second, c.SettleDelay)
	assert.False(t, c.DatabaseConfigured())
}
