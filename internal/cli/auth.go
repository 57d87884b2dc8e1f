package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/app"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/models"
)

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")

		password, err := getPassword(cmd.OutOrStdout(), "Password: ")
		if err != nil {
			return err
		}

		user, err := a.Auth.Register(cmd.Context(), args[0], password, name, models.Role(role))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", user.Username, user.Role)
		return nil
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Verify credentials against the local user table",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		password, err := getPassword(cmd.OutOrStdout(), "Password: ")
		if err != nil {
			return err
		}

		user, err := a.Auth.Authenticate(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "welcome, %s (%s)\n", user.Name, user.Role)
		return nil
	}),
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List user accounts",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		users, err := a.Auth.GetAllUsers(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tROLE")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Name, u.Role)
		}
		return w.Flush()
	}),
}

func init() {
	registerCmd.Flags().String("name", "", "display name")
	registerCmd.Flags().String("role", string(models.RoleTechnician), "user role (admin or technician)")
	rootCmd.AddCommand(registerCmd, loginCmd, usersCmd)
}
