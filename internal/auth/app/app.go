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

	httpapi "github.com/crateworks/wmsauth/internal/auth/http"
	"github.com/crateworks/wmsauth/internal/auth/mail"
	"github.com/crateworks/wmsauth/internal/auth/service"
	"github.com/crateworks/wmsauth/internal/auth/store"
	"github.com/crateworks/wmsauth/internal/auth/store/drivers/sqlite"
	"github.com/crateworks/wmsauth/internal/obs"
	"github.com/crateworks/wmsauth/pkg/cryptox"
	"github.com/crateworks/wmsauth/pkg/jwtx"
	"github.com/crateworks/wmsauth/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the auth service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.Codec

	registry     *service.SessionRegistry
	tokenService *service.TokenService
	permissions  *service.PermissionService
	scopes       *service.ScopeService
	invites      *service.InviteService
	users        *service.UserService
	housekeeping *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New builds the application: database, migrations, seeding, services,
// and the HTTP server. Nothing is listening yet when it returns.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "wmsauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if len(cfg.Secret) < 32 {
		return nil, errors.New("AUTH_SECRET must be set and at least 32 bytes")
	}

	cryptox.SetPepperPath(cfg.PepperFile)
	obs.Init()

	codec, err := jwtx.NewCodec([]byte(cfg.Secret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("init token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("apply migrations: %w", err)
	}
	app.db = db
	return nil
}

func (app *Application) initServices() error {
	ctx := slogx.WithContext(context.Background(), app.logger)

	app.registry = &service.SessionRegistry{
		Store:            app.db,
		InactivityWindow: app.cfg.InactivityTimeout,
	}
	app.tokenService = &service.TokenService{
		Codec:      app.codec,
		Store:      app.db,
		Registry:   app.registry,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}
	app.permissions = &service.PermissionService{Store: app.db}
	app.scopes = &service.ScopeService{Store: app.db}
	app.invites = &service.InviteService{
		Store:  app.db,
		Mailer: app.newMailer(),
		TTL:    app.cfg.InviteTTL,
	}
	app.users = &service.UserService{Store: app.db}
	app.housekeeping = &service.HousekeepingService{Store: app.db}

	seeder := &service.Seeder{Store: app.db}
	if err := seeder.Seed(ctx); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if err := seeder.BootstrapAdmin(ctx, app.cfg.BootstrapAdminEmail, app.cfg.BootstrapAdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	return nil
}

func (app *Application) newMailer() mail.Mailer {
	if app.cfg.SMTPAddr == "" {
		return mail.NewLog()
	}
	return mail.NewSMTP(mail.SMTPConfig{
		Addr:     app.cfg.SMTPAddr,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
		BaseURL:  app.cfg.PublicURL,
	})
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.codec, BuildVersion, app.db, app.logger)
	router.Registry = app.registry
	router.TokenService = app.tokenService
	router.Permissions = app.permissions
	router.Scopes = app.scopes
	router.Invites = app.invites
	router.Users = app.users
	router.Housekeeping = app.housekeeping
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}

// Run starts the HTTP server and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

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

// Shutdown drains in-flight requests, then closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}
