package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigClampsValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, "path_query", cfg.KeyStrategy)
}

func TestLoadMongoDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("CLOUDINARY_URL", "cloudinary://k:s@demo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("APP_ENV", "")

	cfg := Load()
	assert.Equal(t, "dev", cfg.Env)
	assert.True(t, cfg.Dev())
	assert.Equal(t, "streaming", cfg.MongoDB)
	assert.Equal(t, 30, cfg.SessionTTLDays)
	assert.Equal(t, 60*time.Second, cfg.UploadTimeout)
	assert.False(t, cfg.EventsEnabled)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "off")
	assert.False(t, envBool("X_FLAG", true))
	t.Setenv("X_FLAG", "garbage")
	assert.True(t, envBool("X_FLAG", true))
}

func TestLoadMemoryDriverSkipsDatabaseVars(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("CLOUDINARY_URL", "cloudinary://k:s@demo")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CLOUDINARY_FOLDER", "")
	t.Setenv("UPLOAD_TIMEOUT", "5s")
	t.Setenv("EVENTS_ENABLED", "true")

	cfg := Load()
	assert.Empty(t, cfg.MongoURI)
	assert.Empty(t, cfg.DBHost)
	assert.Equal(t, "streaming", cfg.MediaFolder)
	assert.Equal(t, 5*time.Second, cfg.UploadTimeout)
	assert.True(t, cfg.EventsEnabled)
}
