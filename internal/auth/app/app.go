package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/crewplane/crewplane/internal/auth/http"
	"github.com/crewplane/crewplane/internal/auth/service"
	"github.com/crewplane/crewplane/internal/auth/staff"
	"github.com/crewplane/crewplane/internal/auth/store"
	"github.com/crewplane/crewplane/internal/auth/store/drivers/postgres"
	"github.com/crewplane/crewplane/internal/auth/store/drivers/sqlite"
	"github.com/crewplane/crewplane/pkg/cryptox"
	"github.com/crewplane/crewplane/pkg/jwtx"
	"github.com/crewplane/crewplane/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the authorization core with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	vault    *cryptox.Vault
	keys     *jwtx.KeySet
	verifier jwtx.Verifier
	staff    staff.Verifier

	// Services
	userService         *service.UserService
	tenantService       *service.TenantService
	freelancerService   *service.FreelancerService
	entitlementService  *service.EntitlementService
	resolverService     *service.ResolverService
	mfaService          *service.MFAService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authcore",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	vault, err := InitVault(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secret vault: %w", err)
	}
	app.vault = vault

	keys, verifier, err := InitVerifier(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.keys = keys
	app.verifier = verifier

	if err := app.initStaffVerifier(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("authorization core starting", "port", app.cfg.Port, "version", BuildVersion)

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
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authorization core...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("authorization core stopped")
	return nil
}

// initDatabase opens the configured store driver and applies migrations
func (app *Application) initDatabase() error {
	switch app.cfg.DatabaseDriver {
	case "postgres":
		if app.cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER is postgres")
		}
		db, err := postgres.NewStore(app.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.db = db

	case "sqlite", "":
		host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(host)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.db = db

	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q (want sqlite or postgres)", app.cfg.DatabaseDriver)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initStaffVerifier selects the platform staff capability backend
func (app *Application) initStaffVerifier() error {
	switch app.cfg.StaffVerifier {
	case "http":
		if app.cfg.StaffServiceURL == "" {
			return fmt.Errorf("STAFF_SERVICE_URL is required when STAFF_VERIFIER is http")
		}
		app.staff = staff.NewHTTPVerifier(app.cfg.StaffServiceURL, app.cfg.StaffServiceToken)
		app.logger.Info("staff verifier configured", "backend", "http", "url", app.cfg.StaffServiceURL)

	case "static", "":
		app.staff = staff.NewStaticVerifier(app.cfg.PlatformStaff)
		app.logger.Info("staff verifier configured", "backend", "static", "staff_count", len(app.cfg.PlatformStaff))

	default:
		return fmt.Errorf("unknown STAFF_VERIFIER %q (want static or http)", app.cfg.StaffVerifier)
	}

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db}
	app.tenantService = &service.TenantService{Store: app.db}
	app.freelancerService = &service.FreelancerService{Store: app.db}
	app.entitlementService = &service.EntitlementService{Store: app.db}

	app.resolverService = &service.ResolverService{
		Store:           app.db,
		Staff:           app.staff,
		SandboxTenantID: app.cfg.SandboxTenantID,
	}

	app.mfaService = &service.MFAService{
		Store:  app.db,
		Vault:  app.vault,
		Staff:  app.staff,
		Issuer: app.cfg.MFAIssuer,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.UserService = app.userService
	router.TenantService = app.tenantService
	router.FreelancerService = app.freelancerService
	router.EntitlementService = app.entitlementService
	router.ResolverService = app.resolverService
	router.MFAService = app.mfaService
	router.StaffVerifier = app.staff
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
