package cmd

import (
	"fmt"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(config.GetConfig(), true)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
