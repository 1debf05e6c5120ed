package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5001/api", cfg.UpstreamURL)
	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone.String())
	assert.False(t, cfg.JWT.Enabled())
	assert.False(t, cfg.ArchiveEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("UPSTREAM_API_URL", "https://vendas.example.com/api/")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("REPORT_TIMEZONE", "UTC")
	t.Setenv("ARCHIVE_S3_BUCKET", "exports")
	t.Setenv("DATABASE_URL", "postgres://localhost/vendas")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://vendas.example.com/api", cfg.UpstreamURL)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.True(t, cfg.ArchiveEnabled())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"relative upstream", "UPSTREAM_API_URL", "/api"},
		{"bad timeout", "UPSTREAM_TIMEOUT", "soon"},
		{"zero burst", "EXPORT_RATE_BURST", "0"},
		{"short secret", "JWT_SECRET", "tooshort"},
		{"secret without issuer", "JWT_SECRET", "0123456789abcdef0123456789abcdef"},
		{"archive without database", "ARCHIVE_S3_BUCKET", "exports"},
		{"unknown zone", "REPORT_TIMEZONE", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := fromEnv()
			assert.Error(t, err)
		})
	}
}
