package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	httpapi "github.com/aussiebroadwan/tabgate/internal/auth/http"
	"github.com/aussiebroadwan/tabgate/internal/auth/service"
	"github.com/aussiebroadwan/tabgate/internal/auth/store"
	"github.com/aussiebroadwan/tabgate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabgate/pkg/cryptox"
	"github.com/aussiebroadwan/tabgate/pkg/httpx"
	"github.com/aussiebroadwan/tabgate/pkg/jwtx"
	"github.com/aussiebroadwan/tabgate/pkg/kvx"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	hasher   cryptox.PasswordHasher
	cipher   *cryptox.Cipher
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier

	// Services
	tokenService      *service.TokenService
	authService       *service.AuthService
	userService       *service.UserService
	bootstrapService  *service.BootstrapService
	revocationService *service.RevocationService
	watchdog          *service.KVWatchdog // nil unless Redis is configured

	// HTTP server
	server  *http.Server
	router  *httpapi.Router
	handler http.Handler
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initCrypto(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	app.initServices(ctx)

	if err := app.seedAdmin(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler returns the fully wrapped HTTP handler, CORS included.
func (app *Application) Handler() http.Handler {
	return app.handler
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.watchdog != nil {
		app.watchdog.Start()
	}

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.watchdog != nil {
		app.watchdog.Stop()
	}

	if err := app.revocationService.Store().Close(); err != nil {
		app.logger.Warn("error closing revocation store", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initCrypto loads the pepper and builds the token signer, verifier and
// cookie cipher.
func (app *Application) initCrypto() error {
	pepper, err := cryptox.LoadPepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.PasswordHasher{Pepper: pepper}

	app.cipher, err = cryptox.NewCipher(app.cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize cookie cipher: %w", err)
	}

	secret := []byte(app.cfg.JWTSecret)
	app.signer, err = jwtx.NewHS256Signer(secret, app.cfg.Issuer, app.cfg.AccessTTL, app.cfg.RefreshTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.verifier = jwtx.NewHS256Verifier(secret, app.cfg.Issuer)

	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices(ctx context.Context) {
	connect := func(ctx context.Context) kvx.Store {
		return kvx.Connect(ctx, app.cfg.RedisURL, app.logger)
	}

	app.revocationService = service.NewRevocationService(connect(ctx), app.logger)
	if app.cfg.RedisURL != "" {
		app.watchdog = service.NewKVWatchdog(
			app.revocationService,
			connect,
			app.logger,
			app.cfg.RedisRetryInterval,
		)
	}

	app.tokenService = &service.TokenService{Signer: app.signer}
	app.authService = &service.AuthService{
		Store:       app.db,
		Tokens:      app.tokenService,
		Verifier:    app.verifier,
		Revocations: app.revocationService,
		Hasher:      app.hasher,
	}
	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher}
	app.bootstrapService = &service.BootstrapService{
		Store:         app.db,
		Hasher:        app.hasher,
		AdminName:     app.cfg.AdminName,
		AdminEmail:    app.cfg.AdminEmail,
		AdminPassword: app.cfg.AdminPassword,
	}
}

// seedAdmin creates the first admin on an empty database. A generated
// password goes to stderr once and never into the structured log.
func (app *Application) seedAdmin(ctx context.Context) error {
	res, err := app.bootstrapService.SeedAdmin(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if !res.Created {
		return nil
	}

	app.logger.Info("admin user created", "user_id", res.User.ID, "email", res.User.Email)
	if res.GeneratedPassword != "" {
		fmt.Fprintf(os.Stderr, "\nGenerated admin password for %s: %s\nChange it after first login.\n\n",
			res.User.Email, res.GeneratedPassword)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	secure := app.cfg.Production()

	// Validate has already rejected malformed entries.
	proxies, _ := httpx.ParseTrustedProxies(app.cfg.TrustedProxies)
	clientIP := httpx.NewClientIP(proxies)

	csrf := httpx.NewCSRF(app.cfg.CSRFSecret, httpapi.RefreshCookieName, secure)
	csrf.SessionID = clientIP.Key

	router.AuthService = app.authService
	router.UserService = app.userService
	router.Revocations = app.revocationService
	router.CSRF = csrf
	router.ClientIP = clientIP.Key
	router.RefreshCookie = &httpapi.RefreshCookie{Cipher: app.cipher, Secure: secure}
	router.ApplyRoutes()

	app.router = router
	app.handler = router

	if len(app.cfg.AllowedOrigins) > 0 {
		app.handler = cors.New(cors.Options{
			AllowedOrigins:   app.cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization", httpx.CSRFHeader, httpx.CSRFHeaderAlt},
			ExposedHeaders:   []string{slogx.RequestIDHeader},
			AllowCredentials: true,
		}).Handler(router)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
