package main

import (
	"os"

	"github.com/spf13/cobra"

	"instra/internal/interfaces/cli/migrate"
	"instra/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "instra",
		Short: "Instra - access control and identity provisioning service",
		Long:  `Instra manages roles, permissions, onboarding invitations and identity provisioning for a multi-tenant training platform.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
