package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DB_STRING", "postgres://localhost/einlagen")
		t.Setenv("HTTP_PORT", "")
		t.Setenv("COMPLETION_DAYS", "")
		t.Setenv("COMPLETION_TIME_MODE", "")
		t.Setenv("CORS_ORIGINS", "")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTP_PORT)
		assert.Equal(t, "orders.created", cfg.KAFKA_TOPIC)
		assert.Equal(t, "orders.prefill", cfg.KAFKA_PREFILL_TOPIC)
		assert.Equal(t, "wallclock", cfg.COMPLETION_TIME_MODE)
		assert.Nil(t, cfg.LeadDays())
		assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	})

	t.Run("explicit values", func(t *testing.T) {
		t.Setenv("DB_STRING", "postgres://localhost/einlagen")
		t.Setenv("COMPLETION_DAYS", "7")
		t.Setenv("COMPLETION_TIME_MODE", "chosen")
		t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.NotNil(t, cfg.LeadDays())
		assert.Equal(t, 7, *cfg.LeadDays())
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("DB_STRING", "postgres://localhost/einlagen")
		t.Setenv("COMPLETION_DAYS", "soon")
		_, err := LoadConfig()
		assert.Error(t, err)

		t.Setenv("COMPLETION_DAYS", "")
		t.Setenv("COMPLETION_TIME_MODE", "noon")
		_, err = LoadConfig()
		assert.Error(t, err)
	})

	t.Run("database is required", func(t *testing.T) {
		t.Setenv("DB_STRING", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
