package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"linkhub/internal/infra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back or inspect the embedded SQL migrations.`,
	}

	for _, sub := range []struct{ use, short string }{
		{"up", "Run all pending migrations"},
		{"down", "Roll back the most recent migration"},
		{"status", "Show migration status"},
	} {
		command := sub.use
		cmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: sub.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), command)
			},
		})
	}

	return cmd
}

func runMigrate(ctx context.Context, command string) error {
	env, err := initEnv()
	if err != nil {
		return err
	}
	defer env.close()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := infra.Migrate(ctx, env.db, command, env.log); err != nil {
		env.log.Errorw("migration failed", "command", command, "error", err)
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}
