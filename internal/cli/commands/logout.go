package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seedline-dev/seedline/internal/logger"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts ...AppOption) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts...)
			if err != nil {
				return err
			}

			if !app.store.IsAuthenticated() {
				fmt.Println("Not signed in.")
				return nil
			}

			// Backend invalidation is best effort; the local session is
			// cleared regardless so sign-out always succeeds.
			if err := app.client.SignOut(cmd.Context(), app.store.RefreshToken()); err != nil {
				logger.GetLogger().Debug().Err(err).Msg("backend sign-out failed")
			}

			if err := app.store.Logout(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}

			fmt.Println("✓ Signed out.")
			return nil
		},
	}
}
