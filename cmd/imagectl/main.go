package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/thumbnailer/cmd/imagectl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "imagectl",
		Short:        "Administration tools for the thumbnail service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.TierCmd())
	rootCmd.AddCommand(cmd.UserCmd())
	rootCmd.AddCommand(cmd.ExpiringCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
