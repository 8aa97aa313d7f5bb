package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gracechurch/portal/internal/portal/email"
	httpapi "github.com/gracechurch/portal/internal/portal/http"
	"github.com/gracechurch/portal/internal/portal/identity"
	"github.com/gracechurch/portal/internal/portal/metrics"
	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/internal/portal/store/drivers/postgres"
	"github.com/gracechurch/portal/internal/portal/store/drivers/sqlite"
	"github.com/gracechurch/portal/pkg/cryptox"
	"github.com/gracechurch/portal/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	serviceName = "portal"
)

// Application wires the portal service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	identity identity.Provider

	// Email
	sender     email.Sender
	limiter    *email.RateLimiter
	monitor    *email.Monitor
	dispatcher *email.Dispatcher
	composer   email.Composer

	// Services
	registry            *service.Registry
	registration        *service.RegistrationService
	invitations         *service.InvitationService
	members             *service.MemberService
	admin               *service.AdminResolver
	gate                *service.Gate
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	metrics.MustRegister(serviceName)

	ctx := context.Background()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initEmail(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initIdentity(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	if err := app.seedAdminInvites(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("portal service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.Database.Driver,
		"identity", app.cfg.Identity.Driver,
		"email", app.cfg.Email.Driver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down portal service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("portal service stopped")
	return nil
}

// Handler exposes the routed HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.Database.Driver {
	case DatabasePostgres:
		db, err = postgres.NewStore(ctx, app.cfg.Database.URL)
	default:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.Database.File)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.Database.Driver)
	return nil
}

// initEmail builds the sender, the shared rate limiter and the monitor.
func (app *Application) initEmail(ctx context.Context) error {
	sender, err := newSender(app.cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}
	app.sender = sender

	var window email.WindowStore = email.NewMemoryWindow()
	if app.cfg.Email.SharedWindow {
		window = email.NewStoreWindow(app.db.EmailSends())
	}
	app.limiter = email.NewRateLimiter(email.RateLimiterConfig{
		MaxPerMinute: app.cfg.Email.MaxPerMinute,
		MaxPerHour:   app.cfg.Email.MaxPerHour,
		Cooldown:     app.cfg.Email.Cooldown,
	}, window)

	app.monitor = email.NewMonitor(app.cfg.Email.LogCapacity, app.db.EmailLogs())
	if err := app.monitor.Hydrate(ctx); err != nil {
		app.logger.Warn("failed to hydrate email log", "error", err)
	}

	app.dispatcher = &email.Dispatcher{
		Limiter: app.limiter,
		Monitor: app.monitor,
		Sender:  app.sender,
	}
	app.composer = email.Composer{
		PortalURL: app.cfg.PortalURL,
		SiteName:  app.cfg.SiteName,
	}
	return nil
}

func newSender(cfg EmailConfig) (email.Sender, error) {
	switch cfg.Driver {
	case EmailSMTP:
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	case EmailEmailJS:
		return email.NewEmailJSSender(email.EmailJSConfig{
			APIURL:     cfg.APIURL,
			ServiceID:  cfg.ServiceID,
			TemplateID: cfg.TemplateID,
			PublicKey:  cfg.PublicKey,
			PrivateKey: cfg.PrivateKey,
		})
	default:
		return email.LogSender{}, nil
	}
}

// initIdentity selects the identity provider. The local provider mails its
// own confirmation and recovery links through the configured sender.
func (app *Application) initIdentity() error {
	switch app.cfg.Identity.Driver {
	case IdentityGoTrue:
		app.identity = identity.NewGoTrueProvider(identity.GoTrueConfig{
			BaseURL:    app.cfg.Identity.URL,
			ServiceKey: app.cfg.Identity.ServiceKey,
			PublicKey:  app.cfg.Identity.PublicKey,
		})
	default:
		cryptox.SetPepperPath(app.cfg.Identity.PepperFile)

		idp, err := identity.NewLocalProvider(identity.LocalConfig{
			Issuer:      app.cfg.Identity.Issuer,
			AutoConfirm: app.cfg.Identity.AutoConfirm,
			Mailer: email.LinkMailer{
				Sender:   app.sender,
				Composer: app.composer,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize identity provider: %w", err)
		}
		app.identity = idp
	}
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.registry = &service.Registry{Store: app.db}

	app.admin = &service.AdminResolver{
		Store: app.db,
		Policy: service.AdminPolicy{
			Emails:           app.cfg.Admin.Emails,
			LocalPartMarkers: app.cfg.Admin.LocalPartMarkers,
		},
	}
	app.gate = &service.Gate{Identity: app.identity, Admin: app.admin}

	app.registration = &service.RegistrationService{
		Registry:                  app.registry,
		Store:                     app.db,
		Identity:                  app.identity,
		Dispatcher:                app.dispatcher,
		Composer:                  app.composer,
		ProviderSendsConfirmation: !app.cfg.Identity.AutoConfirm,
		NotifyOnRegistration:      app.cfg.NotifyOnRegistration,
	}
	app.invitations = &service.InvitationService{
		Registry:   app.registry,
		Dispatcher: app.dispatcher,
		Composer:   app.composer,
	}
	app.members = &service.MemberService{Store: app.db, Identity: app.identity}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.Email.LogRetention,
		app.cfg.Email.Cooldown,
	)
}

// seedAdminInvites invites every configured admin address that has no
// invitation yet, so the first administrator can register.
func (app *Application) seedAdminInvites(ctx context.Context) error {
	for _, addr := range app.cfg.Admin.Emails {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		_, created, err := app.invitations.Invite(ctx, service.InviteParams{Email: addr})
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			continue
		case err != nil:
			return fmt.Errorf("failed to seed admin invitation: %w", err)
		case created:
			app.logger.Info("seeded admin invitation", "email", addr)
		}
	}
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.identity, app.logger)

	router.Registry = app.registry
	router.Registration = app.registration
	router.Invitations = app.invitations
	router.Members = app.members
	router.Admin = app.admin
	router.Gate = app.gate
	router.EmailMonitor = app.monitor
	router.EmailLimiter = app.limiter
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
