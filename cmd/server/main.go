package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	_ "github.com/lib/pq"

	"techtalks/config"
	"techtalks/internal/adapters/auth"
	"techtalks/internal/adapters/community"
	"techtalks/internal/adapters/donation"
	"techtalks/internal/adapters/email"
	httpdelivery "techtalks/internal/delivery/http"
	"techtalks/internal/delivery/http/controllers"
	"techtalks/internal/domain"
	"techtalks/internal/repository/postgres"
	"techtalks/internal/services"
)

const shutdownTimeout = 15 * time.Second

// @title Tech Talks API
// @version 1.0
// @description Speaker registration, talk review and public event pages for the community tech-talk site.
// @BasePath /
func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.EventTimezone)
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.AWSRegion,
			AccessKeyID:        cfg.Mail.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SESInsecureSkipVerify,
			Endpoint:           cfg.Mail.SESEndpoint,
			Timeout:            cfg.UpstreamTimeout,
		},
		SMTP: email.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			Timeout:  cfg.UpstreamTimeout,
			Insecure: !cfg.IsProduction(),
		},
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	tokens := auth.NewJWTManager(cfg.JWTSecret)
	authService := services.NewAuthService(
		postgres.NewUserRepository(db),
		auth.NewBcryptHasher(auth.DefaultBcryptCost),
		tokens,
		tokens,
		cfg.TokenTTL,
		emailService,
		logger,
	)
	submissionService := services.NewSubmissionService(postgres.NewSubmissionRepository(db), emailService, logger)

	upstream := &http.Client{Timeout: cfg.UpstreamTimeout}
	var donations domain.DonationFetcher
	if cfg.DonationBaseURL != "" {
		donations = donation.NewHTTPFetcher(upstream, cfg.DonationBaseURL, cfg.DonationToken)
	}
	var feed domain.CommunityEventFetcher
	if cfg.CommunityEventsURL != "" {
		feed = community.NewHTTPFetcher(upstream, cfg.CommunityEventsURL)
	}
	homeService := services.NewHomeService(submissionService, feed, donations, loc, cfg.UpstreamTimeout, logger)

	router := httpdelivery.NewRouter(httpdelivery.RouterConfig{
		Logger:             logger,
		Identity:           authService,
		Auth:               controllers.NewAuthController(logger, authService, cfg.TokenTTL, cfg.CookieSecure),
		Submissions:        controllers.NewSubmissionController(logger, submissionService, cfg.MaxPhotoBytes),
		Admin:              controllers.NewAdminController(logger, submissionService, authService),
		Public:             controllers.NewPublicController(logger, homeService, db),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimit:      cfg.AuthRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
