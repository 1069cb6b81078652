package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"linkhub/internal/repositories"
	"linkhub/internal/services"
)

func newRenewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "renew",
		Short: "Run the renewal batch once",
		Long:  `Charge every ACTIVE subscription due by the end of today and print the report as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := initEnv()
			if err != nil {
				return err
			}
			defer env.close()

			if env.cfg.Toss.SecretKey == "" {
				return errors.New("TOSS_SECRET_KEY is required")
			}

			gateway := services.NewTossClient(env.cfg.Toss, env.log)
			subscriptions := services.NewSubscriptionService(
				env.db,
				repositories.NewSubscriptionRepository(env.db),
				repositories.NewAccountRepository(env.db),
				env.log,
			)
			renewals := services.NewRenewalService(gateway, subscriptions, env.cfg, env.log)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			report, err := renewals.RunRenewals(ctx)
			if err != nil {
				return fmt.Errorf("run renewals: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}
