package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/thumbnailer/internal/app"
)

func UserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var (
		password string
		tierName string
	)
	createCmd := &cobra.Command{
		Use:   "create USERNAME",
		Short: "Create a user and print its API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				user, token, err := a.AuthService.Register(args[0], password, tierName)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user:  %s\ntier:  %s\ntoken: %s\n", user.ID, user.TierName(), token.Key)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&password, "password", "", "Account password (required)")
	createCmd.Flags().StringVar(&tierName, "tier", "", "Tier name (default Basic)")
	_ = createCmd.MarkFlagRequired("password")
	userCmd.AddCommand(createCmd)

	userCmd.AddCommand(&cobra.Command{
		Use:   "set-tier USERNAME TIER",
		Short: "Move a user to another tier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				user, err := a.UserService.ByUsername(args[0])
				if err != nil {
					return err
				}
				user, err = a.UserService.ChangeTier(user.ID, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now on %s\n", user.Username, user.TierName())
				return nil
			})
		},
	})

	userCmd.AddCommand(&cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete a user with all of its images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				user, err := a.UserService.ByUsername(args[0])
				if err != nil {
					return err
				}
				return a.UserService.DeleteAccount(user.ID)
			})
		},
	})

	return userCmd
}
