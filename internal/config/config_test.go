package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social_sync/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 150*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 3, cfg.Scraper.Retry.MaxAttempts)
	assert.Equal(t, 7*24*time.Hour, cfg.Sync.DefaultTTL)
	assert.Equal(t, 50, cfg.Sync.FetchLimit)
	assert.Zero(t, cfg.Sync.RefreshInterval)

	tw := cfg.Platform(domain.PlatformTwitter)
	assert.Equal(t, "apidojo/tweet-scraper", tw.ActorID)
	assert.Equal(t, 20, tw.MaxItems)
	assert.Equal(t, 7*24*time.Hour, tw.TTL)
}

func TestLoad_PlatformOverridesAndEnv(t *testing.T) {
	t.Setenv("SCRAPER_TOKEN", "tok-123")

	cfg, err := Load(writeConfig(t, `
storage:
  driver: memory
scraper:
  token: ${SCRAPER_TOKEN}
platforms:
  x:
    max_items: 40
    ttl: 24h
  youtube:
    actor_id: me/yt
`))
	require.NoError(t, err)

	assert.Equal(t, "tok-123", cfg.Scraper.Token)
	assert.Equal(t, "memory", cfg.Storage.Driver)

	tw := cfg.Platform(domain.PlatformTwitter)
	assert.Equal(t, 40, tw.MaxItems)
	assert.Equal(t, 24*time.Hour, tw.TTL)
	assert.Equal(t, "me/yt", cfg.Platform(domain.PlatformYouTube).ActorID)

	ttls := cfg.TTLs()
	assert.Equal(t, 24*time.Hour, ttls[domain.PlatformTwitter])
	assert.Equal(t, 7*24*time.Hour, ttls[domain.PlatformInstagram])
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "storage:\n  driver: mongo\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "platforms:\n  myspace:\n    max_items: 1\n"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedPlatform)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
