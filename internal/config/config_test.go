package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "wp_", cfg.DB.TablePrefix)
	assert.False(t, cfg.Storage.CustomOrdersTable)
	assert.Equal(t, "wcs_telemetry_data", cfg.Telemetry.CacheKey)
	assert.Equal(t, 7*24*time.Hour, cfg.Telemetry.CacheTTL)
	assert.Equal(t, 12, cfg.Telemetry.TrailingMonths)
	assert.Equal(t, []string{"stripe", "paypal"}, cfg.Gateways.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("STORAGE_CUSTOM_ORDERS_TABLE", "true")
	t.Setenv("TELEMETRY_INTERVAL", "6h")
	t.Setenv("GATEWAYS_ENABLED", " stripe , bacs,,")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.True(t, cfg.Storage.CustomOrdersTable)
	assert.Equal(t, 6*time.Hour, cfg.Telemetry.Interval)
	assert.Equal(t, []string{"stripe", "bacs"}, cfg.Gateways.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidDriver)

	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("TELEMETRY_TRAILING_MONTHS", "0")
	_, err = Load()
	assert.ErrorIs(t, err, ErrInvalidTrailingMonths)

	t.Setenv("TELEMETRY_TRAILING_MONTHS", "12")
	t.Setenv("OTEL_PROTOCOL", "thrift")
	_, err = Load()
	assert.ErrorIs(t, err, ErrInvalidOtelProtocol)

	t.Setenv("OTEL_PROTOCOL", " HTTP ")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Otel.Protocol)
}

func writeConfig(t *testing.T, path, gateways string) {
	t.Helper()
	body := "db:\n  driver: sqlite\ngateways:\n  enabled: [" + gateways + "]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtelemetry.yaml")
	writeConfig(t, path, "stripe, xendit")

	cfg, w, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, []string{"stripe", "xendit"}, cfg.Gateways.Enabled)
	assert.Equal(t, path, w.File())
}

func TestWatcherReloadsEditedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtelemetry.yaml")
	writeConfig(t, path, "stripe")

	_, w, err := LoadFile(path)
	require.NoError(t, err)

	reloaded := make(chan Config, 16)
	w.OnChange(func(cfg Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	w.Start()
	w.Start()

	writeConfig(t, path, "stripe, bacs")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if slices.Contains(cfg.Gateways.Enabled, "bacs") {
				assert.Equal(t, []string{"stripe", "bacs"}, cfg.Gateways.Enabled)
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}

func TestWatcherWithoutFileIsInert(t *testing.T) {
	t.Chdir(t.TempDir())

	_, w, err := Provide()
	require.NoError(t, err)
	assert.Empty(t, w.File())
	w.Start()
}
