package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResetPasswordCmd creates the reset-password command
func NewResetPasswordCmd(opts ...AppOption) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts...)
			if err != nil {
				return err
			}

			if email == "" {
				return fmt.Errorf("email is required (use --email)")
			}

			if err := app.client.RequestPasswordReset(cmd.Context(), email); err != nil {
				return fmt.Errorf("failed to request password reset: %w", err)
			}

			fmt.Printf("✓ Password reset email sent to %s.\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the account")

	return cmd
}
