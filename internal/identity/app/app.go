package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/smtp"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	httpapi "github.com/lightbeamhq/identity/internal/identity/http"
	"github.com/lightbeamhq/identity/internal/identity/mailer"
	"github.com/lightbeamhq/identity/internal/identity/service"
	"github.com/lightbeamhq/identity/internal/identity/store"
	"github.com/lightbeamhq/identity/internal/identity/store/drivers/sqlite"
	"github.com/lightbeamhq/identity/pkg/cryptox"
	"github.com/lightbeamhq/identity/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	mails mailer.Mailer

	signupService       *service.SignupService
	inviteService       *service.InviteService
	passwordService     *service.PasswordService
	sessionService      *service.SessionService
	googleService       *service.GoogleService // nil when Google is not configured
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "identity-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initMailer()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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
	app.logger.Info("shutting down identity service...")

	// Give outstanding requests a deadline for completion
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

	app.logger.Info("identity service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
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

// initMailer selects the mail transport. Anything but "smtp" logs the
// messages, which is what dev environments want.
func (app *Application) initMailer() {
	if app.cfg.MailMode != "smtp" {
		app.mails = &mailer.Log{Logger: app.logger}
		app.logger.Info("mailer running in log mode")
		return
	}

	var auth smtp.Auth
	if app.cfg.SMTPUsername != "" {
		host, _, err := net.SplitHostPort(app.cfg.SMTPAddr)
		if err != nil {
			host = app.cfg.SMTPAddr
		}
		auth = smtp.PlainAuth("", app.cfg.SMTPUsername, app.cfg.SMTPPassword, host)
	}

	app.mails = &mailer.SMTP{
		Addr:    app.cfg.SMTPAddr,
		From:    app.cfg.SMTPFrom,
		Auth:    auth,
		BaseURL: app.cfg.BaseURL,
	}
	app.logger.Info("mailer running in smtp mode", "addr", app.cfg.SMTPAddr)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.signupService = &service.SignupService{Store: app.db, Mailer: app.mails}
	app.inviteService = &service.InviteService{Store: app.db, Mailer: app.mails}
	app.passwordService = &service.PasswordService{Store: app.db, Mailer: app.mails}
	app.sessionService = &service.SessionService{Store: app.db, TTL: app.cfg.SessionTTL}

	if app.cfg.GoogleEnabled() {
		app.googleService = &service.GoogleService{
			Store:    app.db,
			Sessions: app.sessionService,
			OAuth: &oauth2.Config{
				ClientID:     app.cfg.GoogleClientID,
				ClientSecret: app.cfg.GoogleClientSecret,
				RedirectURL:  app.cfg.GoogleRedirectURL,
				Scopes:       []string{"openid", "email"},
				Endpoint:     google.Endpoint,
			},
		}
		app.logger.Info("google federated login enabled")
	} else {
		app.logger.Info("google federated login disabled (no client credentials)")
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.CookieSecure = app.cfg.CookieSecure

	router.SignupService = app.signupService
	router.InviteService = app.inviteService
	router.PasswordService = app.passwordService
	router.SessionService = app.sessionService
	router.GoogleService = app.googleService // nil disables the endpoints
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
