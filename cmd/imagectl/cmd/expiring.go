package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/thumbnailer/internal/app"
)

func ExpiringCmd() *cobra.Command {
	expiringCmd := &cobra.Command{
		Use:   "expiring",
		Short: "Manage expiring links",
	}

	expiringCmd.AddCommand(&cobra.Command{
		Use:   "reap",
		Short: "Delete expired links that were never fetched again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				n, err := a.ExpiringService.Reap()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reaped %d expired links\n", n)
				return nil
			})
		},
	})

	return expiringCmd
}
