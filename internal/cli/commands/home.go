package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seedline-dev/seedline/internal/api"
	"github.com/seedline-dev/seedline/internal/session"
)

// NewHomeCmd creates the home command, which fetches the landing
// content for the account's active role.
func NewHomeCmd(opts ...AppOption) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Fetch the landing content for your active role",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts...)
			if err != nil {
				return err
			}
			if err := requireSession(app); err != nil {
				return err
			}

			var message string
			switch role := app.store.Role(); role {
			case session.RoleInvestor:
				message, err = app.client.InvestorHome(cmd.Context())
			case session.RoleStartup:
				message, err = app.client.StartupHome(cmd.Context())
			default:
				return fmt.Errorf("no role assigned yet, run 'seedline role' to pick one")
			}
			if err != nil {
				var apiErr *api.APIError
				if errors.As(err, &apiErr) && apiErr.StatusCode == 403 {
					return fmt.Errorf("your role no longer has access, run 'seedline role' to resync")
				}
				return friendlyAuthError(err)
			}

			fmt.Println(message)
			return nil
		},
	}
}
