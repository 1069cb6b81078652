package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"linkhub/internal/repositories"
	"linkhub/internal/services"
	"linkhub/pkg/utils"
)

// newTokenCommand mints a bearer token for a local or staging user.
func newTokenCommand() *cobra.Command {
	var (
		email string
		name  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create a user if needed and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := initEnv()
			if err != nil {
				return err
			}
			defer env.close()

			if env.cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is required")
			}

			accountRepo := repositories.NewAccountRepository(env.db)
			subscriptions := services.NewSubscriptionService(
				env.db,
				repositories.NewSubscriptionRepository(env.db),
				accountRepo,
				env.log,
			)
			accounts := services.NewAccountService(accountRepo, subscriptions, env.log)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			user, err := accounts.EnsureUser(ctx, name, email)
			if err != nil {
				return err
			}

			token, err := utils.CreateToken(env.cfg.JWTSecret, user.ID.String(), ttl)
			if err != nil {
				return fmt.Errorf("create token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name for a new user")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
