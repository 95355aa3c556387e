package auth_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabgate/internal/auth/app"
	"github.com/aussiebroadwan/tabgate/pkg/authsdk"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run the full application in-process against a real
 * Redis started with testcontainers. They are skipped when Docker is not
 * available.
 */

const (
	redisImage = "redis:7-alpine"

	jwtSecret     = "e2e-secret-0123456789abcdef-0123456789"
	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
)

type stack struct {
	baseURL string
	redis   *redis.Client
	redisC  testcontainers.Container
	app     *app.Application
}

// setupRedis starts a Redis container and returns its URL.
func setupRedis(t *testing.T) (testcontainers.Container, string) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return container, fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

// setupStack starts Redis and serves the application on an httptest server.
func setupStack(t *testing.T) *stack {
	t.Helper()
	container, redisURL := setupRedis(t)

	dir := t.TempDir()
	application, err := app.New(app.Config{
		JWTSecret:           jwtSecret,
		Issuer:              "tabgate-e2e",
		AccessTTL:           30 * time.Minute,
		RefreshTTL:          24 * time.Hour,
		EncryptionKey:       jwtSecret,
		CSRFSecret:          jwtSecret,
		RedisURL:            redisURL,
		RedisRetryInterval:  time.Second,
		DatabaseFile:        filepath.Join(dir, "auth.db"),
		PepperFile:          filepath.Join(dir, "pepper"),
		AdminName:           "Super Admin",
		AdminEmail:          adminEmail,
		AdminPassword:       adminPassword,
		Env:                 "test",
		LogLevel:            "error",
		LogFormat:           "json",
		Port:                8080,
		ShutdownGracePeriod: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	opt, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })

	return &stack{baseURL: srv.URL, redis: rdb, redisC: container, app: application}
}

// login returns a client holding a fresh session for the seeded admin.
func (s *stack) login(t *testing.T) *authsdk.Client {
	t.Helper()
	client := authsdk.NewClient(s.baseURL)
	resp, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Data.Token)
	return client
}
