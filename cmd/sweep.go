package cmd

import (
	"fmt"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark unconfirmed orders older than STALE_ORDER_AGE as stale and notify the shop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			ctx := cmd.Context()

			db, err := openDatabase(cfg, false)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			infra, err := startInfrastructure(ctx, cfg, db)
			if err != nil {
				return err
			}
			defer infra.close(ctx)

			// the distributed lock keeps a cron run from racing the server's scheduler
			result, err := services.NewOrderService(db, cfg).SweepStale(ctx, nil, true)
			if err != nil {
				return err
			}
			if result.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "another instance is sweeping, skipped")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %d order(s) stale %v\n", result.Marked, result.OrderNumbers)
			return nil
		},
	}
}
