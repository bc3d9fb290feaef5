package cmd

import (
	"fmt"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"github.com/shahzaib-autos/shahzaib-autos-api/services"
	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage dashboard accounts",
	}
	cmd.AddCommand(newAdminCreateCmd())
	return cmd
}

// newAdminCreateCmd seeds accounts, including the first OWNER, which the API cannot do
func newAdminCreateCmd() *cobra.Command {
	var email, name, password, role string

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a dashboard account",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(config.GetConfig(), true)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			admin, err := services.NewAdminService(db).Create(cmd.Context(), nil, services.AdminInput{
				Email:    email,
				Name:     name,
				Password: password,
				Role:     models.Role(role),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s admin %q (id=%d)\n", admin.Role, admin.Email, admin.ID)
			return nil
		},
	}

	c.Flags().StringVar(&email, "email", "", "login email")
	c.Flags().StringVar(&name, "name", "", "display name")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().StringVar(&role, "role", string(models.RoleOwner), "OWNER, MANAGER or STAFF")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("password")
	return c
}
