package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "linkhub",
		Short: "LinkHub - short links with FREE and PRO plans",
		Long:  `LinkHub serves the link shortener API, the redirect endpoint and the subscription billing jobs.`,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newRenewCommand(),
		newTokenCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
