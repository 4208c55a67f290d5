package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./accounts.db", cfg.DatabasePath)
	assert.Equal(t, 60*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, EmailBackendConsole, cfg.EmailBackend)
	assert.Equal(t, "@hourly", cfg.SweepSchedule)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("EMAIL_BACKEND", "file")
	t.Setenv("EMAIL_FILE", "/tmp/mail.log")
	t.Setenv("TOKEN_SWEEP_SCHEDULE", "*/10 * * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, EmailBackendFile, cfg.EmailBackend)
	assert.Equal(t, "/tmp/mail.log", cfg.EmailFile)
	assert.Equal(t, "*/10 * * * *", cfg.SweepSchedule)
}

func TestLoad_Failures(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("PORT", "not-a-number")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown email backend", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("EMAIL_BACKEND", "telegraph")
		_, err := Load()
		assert.Error(t, err)
	})
}
