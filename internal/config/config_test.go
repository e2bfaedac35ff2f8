package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"complaintportal/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, "complaint-portal", cfg.JWTIssuer)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "redis", cfg.QueueBackend)
	assert.Equal(t, "complaints:notifications", cfg.QueueKey)
	assert.Equal(t, 8, cfg.DBMaxConns)
	assert.Equal(t, "complaints@example.edu", cfg.FeedbackTo)
	assert.Empty(t, cfg.RedisPassword)
	assert.Empty(t, cfg.StaffSubjects)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("QUEUE_BACKEND", "memory")
	t.Setenv("RATE_LIMIT_PER_MIN", "10")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := config.Load()
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "memory", cfg.QueueBackend)
	assert.Equal(t, 10, cfg.RateLimitPerMin)
	assert.True(t, cfg.MinioUseSSL)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")
	t.Setenv("MINIO_USE_SSL", "maybe")

	cfg := config.Load()
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.False(t, cfg.MinioUseSSL)
}

func TestStaffSubjects(t *testing.T) {
	t.Setenv("STAFF_SUBJECTS", "warden01, registrar02 ,")

	cfg := config.Load()
	assert.Equal(t, []string{"warden01", "registrar02"}, cfg.StaffSubjects)
	assert.True(t, cfg.IsStaff("warden01"))
	assert.True(t, cfg.IsStaff("registrar02"))
	assert.False(t, cfg.IsStaff("2211201099"))
}
