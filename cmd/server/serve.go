package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v3"

	"github.com/sumire/hess/internal/auth"
	"github.com/sumire/hess/internal/config"
	"github.com/sumire/hess/internal/handler"
	"github.com/sumire/hess/internal/mail"
	"github.com/sumire/hess/internal/repository"
	"github.com/sumire/hess/internal/service"
	"github.com/sumire/hess/internal/storage"
)

const (
	shutdownTimeout = 30 * time.Second
	purgeInterval   = time.Hour
)

func cmdServe(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return serve(ctx, *cfg)
		},
	}
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := repository.Open(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("database connected")
	return db, nil
}

func newMailer(cfg config.Config) (mail.Sender, error) {
	if !cfg.MailEnabled() {
		slog.Warn("postmark is not configured, emails will only be logged")
		return mail.NewLogSender(slog.Default()), nil
	}
	pm, err := mail.NewPostmark(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.MailSender)
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTExpireInHours)
	if err != nil {
		return err
	}
	mailer, err := newMailer(cfg)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)

	var userOpts []service.UserServiceOption
	if cfg.StorageEnabled() {
		images, err := storage.NewS3(ctx, storage.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
		})
		if err != nil {
			return err
		}
		userOpts = append(userOpts, service.WithImageStore(images))
	} else {
		slog.Warn("S3_BUCKET is not set, profile image uploads are disabled")
	}

	authSvc := service.NewAuthService(userRepo, tokens, service.AuthConfig{
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GitHubClientID:     cfg.GitHubClientID,
		GitHubClientSecret: cfg.GitHubClientSecret,
		PublicURL:          cfg.PublicURL,
	})
	userSvc := service.NewUserService(
		userRepo,
		repository.NewConfirmationTokenRepository(db),
		repository.NewPasswordResetTokenRepository(db),
		mailer,
		service.UserConfig{
			FrontendURL:      cfg.FrontendURL,
			ActivationTTL:    time.Duration(cfg.AccountActivationTokenExpireInHours) * time.Hour,
			PasswordResetTTL: time.Duration(cfg.PasswordResetTokenExpireInHours) * time.Hour,
		},
		userOpts...,
	)
	socialSvc := service.NewSocialService(
		userRepo,
		repository.NewFollowerRepository(db),
		repository.NewBlockRepository(db),
		repository.NewPrivacyRepository(db),
	)

	e := handler.NewRouter(handler.Deps{
		Gate:        auth.NewGate(tokens, userRepo),
		Auth:        authSvc,
		Users:       userSvc,
		Social:      socialSvc,
		FrontendURL: cfg.FrontendURL,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go purgeExpiredTokens(ctx, userSvc)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func purgeExpiredTokens(ctx context.Context, users *service.UserService) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := users.PurgeExpiredTokens(ctx)
			if err != nil {
				slog.Error("failed to purge expired tokens", "error", err)
				continue
			}
			slog.Info("purged expired tokens", "count", n)
		}
	}
}
