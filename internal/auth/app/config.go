package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tabgate/pkg/httpx"
	"github.com/aussiebroadwan/tabgate/pkg/jwtx"
	"github.com/joho/godotenv"
)

type Config struct {
	JWTSecret     string        // Required: HMAC secret for access and refresh tokens (min 32 chars)
	Issuer        string        // Optional: iss claim (default: tabgate)
	AccessTTL     time.Duration // JWT_ACCESS_EXPIRATION_MINUTES (default: 30)
	RefreshTTL    time.Duration // JWT_REFRESH_EXPIRATION_DAYS (default: 30)
	EncryptionKey string        // Optional: refresh cookie cipher secret (default: JWT_SECRET)
	CSRFSecret    string        // Optional: CSRF HMAC secret (default: JWT_SECRET)

	RedisURL           string        // Optional: revocation store; empty disables revocation
	RedisRetryInterval time.Duration // Reconnect interval while Redis is down (default: 30s)

	AllowedOrigins []string // Optional: CORS origins, comma separated
	TrustedProxies []string // Optional: proxy IPs/CIDRs whose X-Forwarded-For is honoured, comma separated

	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile   string // Optional: path to the password pepper file; empty means no pepper

	AdminName     string // Seeded admin name (default: Super Admin)
	AdminEmail    string // Seeded admin email (default: admin@example.com)
	AdminPassword string // Seeded admin password (default: password123 in dev/test, generated elsewhere)

	Env                 string        // Environment (dev, test, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading .env if there is one.
// Variables already set in the environment win over .env.
func LoadConfig() Config {
	_ = godotenv.Load()

	env := getEnvOrDefault("ENV", "dev")
	jwtSecret := os.Getenv("JWT_SECRET")

	cfg := Config{
		JWTSecret: jwtSecret,
		Issuer:    getEnvOrDefault("JWT_ISSUER", "tabgate"),
		AccessTTL: time.Duration(
			getEnvIntOrDefault("JWT_ACCESS_EXPIRATION_MINUTES", 30),
		) * time.Minute,
		RefreshTTL: time.Duration(
			getEnvIntOrDefault("JWT_REFRESH_EXPIRATION_DAYS", 30),
		) * 24 * time.Hour,
		EncryptionKey: getEnvOrDefault("ENCRYPTION_KEY", jwtSecret),
		CSRFSecret:    getEnvOrDefault("CSRF_SECRET", jwtSecret),

		RedisURL:           os.Getenv("REDIS_URL"),
		RedisRetryInterval: getEnvDurationOrDefault("REDIS_RETRY_INTERVAL", 30*time.Second),

		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "auth.db"),
		PepperFile:   os.Getenv("PEPPER_FILE"),

		AdminName:     getEnvOrDefault("ADMIN_NAME", "Super Admin"),
		AdminEmail:    getEnvOrDefault("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		Env:                 env,
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.AdminPassword == "" && !cfg.Production() {
		cfg.AdminPassword = "password123"
	}

	return cfg
}

// Production is true outside dev and test. It turns on Secure cookies and
// stops the well-known admin password default.
func (c Config) Production() bool {
	return c.Env != "dev" && c.Env != "test"
}

// Validate reports the first configuration problem.
func (c Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", jwtx.MinSecretLength))
	}
	if c.EncryptionKey == "" {
		errs = append(errs, errors.New("ENCRYPTION_KEY must not be empty"))
	}
	if c.CSRFSecret == "" {
		errs = append(errs, errors.New("CSRF_SECRET must not be empty"))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_EXPIRATION_MINUTES must be positive"))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_EXPIRATION_DAYS must be positive"))
	}
	if c.AccessTTL >= c.RefreshTTL {
		errs = append(errs, errors.New("access token lifetime must be shorter than refresh token lifetime"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if _, err := httpx.ParseTrustedProxies(c.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	if c.AdminEmail == "" {
		errs = append(errs, errors.New("ADMIN_EMAIL must not be empty"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for part := range strings.SplitSeq(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
