package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("MEDIA_PROVIDER", "")
	t.Setenv("MODERATION_RESEND_ON_REAPPROVE", "")
	t.Setenv("UPLOAD_PROFILE_MAX_BYTES", "")
	t.Setenv("UPLOAD_RECORD_MAX_BYTES", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, ":8080", cfg.ServerPort)
	assert.Equal(t, MediaProviderCloudinary, cfg.MediaProvider)
	assert.False(t, cfg.ResendOnReapprove)
	assert.Equal(t, int64(2_000_000), cfg.Uploads.ProfileImageMaxBytes)
	assert.Equal(t, int64(200_000_000), cfg.Uploads.RecordImageMaxBytes)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("MEDIA_PROVIDER", "S3")
	t.Setenv("S3_BUCKET", "valle")
	t.Setenv("S3_USE_SSL", "false")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("MODERATION_RESEND_ON_REAPPROVE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, MediaProviderS3, cfg.MediaProvider)
	assert.Equal(t, "valle", cfg.S3.Bucket)
	assert.False(t, cfg.S3.UseSSL)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.True(t, cfg.ResendOnReapprove)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TEST_INT", "abc")
	t.Setenv("TEST_DURATION", "soon")
	t.Setenv("TEST_BOOL", "maybe")

	assert.Equal(t, 7, getEnvAsInt("TEST_INT", 7))
	assert.Equal(t, time.Minute, getEnvAsDuration("TEST_DURATION", "1m"))
	assert.True(t, getEnvAsBool("TEST_BOOL", true))
}
