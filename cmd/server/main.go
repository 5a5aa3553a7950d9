package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/sumire/hess/internal/config"
	"github.com/sumire/hess/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	var cfg config.Config

	return &cli.Command{
		Name:  "hess",
		Usage: "hess social API server",
		Before: func(ctx context.Context, _ *cli.Command) (context.Context, error) {
			loaded, err := config.Load()
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			cfg = loaded

			level, err := logging.ParseLevel(cfg.LogLevel)
			if err != nil {
				return ctx, err
			}
			slog.SetDefault(logging.New(
				logging.WithLevel(level),
				logging.WithFormat(logging.Format(cfg.LogFormat)),
			))
			return ctx, nil
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			return serve(ctx, cfg)
		},
		Commands: []*cli.Command{
			cmdServe(&cfg),
			cmdIssueToken(&cfg),
		},
	}
}
