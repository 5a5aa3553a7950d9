package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/sumire/hess/internal/auth"
	"github.com/sumire/hess/internal/config"
	"github.com/sumire/hess/internal/repository"
)

func cmdIssueToken(cfg *config.Config) *cli.Command {
	var userID string

	return &cli.Command{
		Name:  "issue-token",
		Usage: "Sign an access token for an existing user",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "user",
				Usage:       "user id (UUID)",
				Required:    true,
				Destination: &userID,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			db, err := openDB(ctx, *cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := repository.NewUserRepository(db).FindByID(ctx, id)
			if err != nil {
				return err
			}

			tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTExpireInHours)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(user.ID)
			if err != nil {
				return err
			}
			fmt.Println(string(token))
			return nil
		},
	}
}
