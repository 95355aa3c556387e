package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "JWT_SECRET", "JWT_ISSUER", "JWT_ACCESS_EXPIRATION_MINUTES", "JWT_REFRESH_EXPIRATION_DAYS",
		"ENCRYPTION_KEY", "CSRF_SECRET", "REDIS_URL", "REDIS_RETRY_INTERVAL", "ALLOWED_ORIGINS", "TRUSTED_PROXIES",
		"DATABASE_FILE", "PEPPER_FILE", "ADMIN_NAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
		"LOG_LEVEL", "LOG_FORMAT", "PORT", "SHUTDOWN_GRACE_PERIOD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg := LoadConfig()

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "tabgate", cfg.Issuer)
	require.Equal(t, 30*time.Minute, cfg.AccessTTL)
	require.Equal(t, 30*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, testSecret, cfg.EncryptionKey, "falls back to JWT_SECRET")
	require.Equal(t, testSecret, cfg.CSRFSecret, "falls back to JWT_SECRET")
	require.Equal(t, 30*time.Second, cfg.RedisRetryInterval)
	require.Empty(t, cfg.RedisURL)
	require.Empty(t, cfg.AllowedOrigins)
	require.Empty(t, cfg.TrustedProxies, "forwarding headers ignored by default")
	require.Equal(t, "auth.db", cfg.DatabaseFile)
	require.Equal(t, "admin@example.com", cfg.AdminEmail)
	require.Equal(t, "password123", cfg.AdminPassword)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.False(t, cfg.Production())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "prod")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("JWT_ACCESS_EXPIRATION_MINUTES", "15")
	t.Setenv("JWT_REFRESH_EXPIRATION_DAYS", "7")
	t.Setenv("ENCRYPTION_KEY", "cookie-key")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_RETRY_INTERVAL", "5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("PORT", "9090")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg := LoadConfig()

	require.True(t, cfg.Production())
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, "cookie-key", cfg.EncryptionKey)
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	require.Equal(t, 5*time.Second, cfg.RedisRetryInterval)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
	require.Empty(t, cfg.AdminPassword, "no well-known default outside dev/test")
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "soon")

	cfg := LoadConfig()
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			JWTSecret:     testSecret,
			EncryptionKey: testSecret,
			CSRFSecret:    testSecret,
			AccessTTL:     30 * time.Minute,
			RefreshTTL:    24 * time.Hour,
			Port:          8080,
			AdminEmail:    "admin@example.com",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET"},
		{"empty encryption key", func(c *Config) { c.EncryptionKey = "" }, "ENCRYPTION_KEY"},
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }, "JWT_ACCESS_EXPIRATION_MINUTES"},
		{"refresh shorter than access", func(c *Config) { c.RefreshTTL = time.Minute }, "shorter"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"bad trusted proxy", func(c *Config) { c.TrustedProxies = []string{"not-an-ip"} }, "TRUSTED_PROXIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
