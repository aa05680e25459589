package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dedirosandiaj/problem-log-new/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "problemlog",
		Short:        "ATM problem log back office",
		Long:         `problemlog serves the complaint back-office API and ships the tools to migrate its database, seed an administrator and exchange location CSVs.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		cli.NewServeCommand(),
		cli.NewMigrateCommand(),
		cli.NewUsersCommand(),
		cli.NewLocationsCommand(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
