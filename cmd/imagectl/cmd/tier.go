package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/templui/thumbnailer/internal/app"
	"github.com/templui/thumbnailer/internal/tier"
)

func TierCmd() *cobra.Command {
	tierCmd := &cobra.Command{
		Use:   "tier",
		Short: "Manage account tiers",
	}

	tierCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tiers and the artifacts an upload produces for each",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				tiers, err := a.UserService.Tiers()
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tKIND\tTHUMBNAILS\tORIGINAL\tEXPIRING")
				for _, t := range tiers {
					p := tier.Resolve(t)
					fmt.Fprintf(tw, "%s\t%s\t%v\t%t\t%t\n", t.Name, p.Kind, p.Sizes, p.ExposeOriginal, p.ExposeExpiring)
				}
				return tw.Flush()
			})
		},
	})

	var (
		height   int
		original bool
		expiring bool
	)
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a custom tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				t, err := a.UserService.CreateTier(args[0], height, original, expiring)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created tier %s (%s)\n", t.Name, t.ID)
				return nil
			})
		},
	}
	createCmd.Flags().IntVar(&height, "height", 0, "Thumbnail height in pixels (required)")
	createCmd.Flags().BoolVar(&original, "original", false, "Include a link to the original image")
	createCmd.Flags().BoolVar(&expiring, "expiring", false, "Allow expiring links")
	_ = createCmd.MarkFlagRequired("height")
	tierCmd.AddCommand(createCmd)

	return tierCmd
}
