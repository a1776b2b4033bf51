package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/seedline-dev/seedline/internal/auth"
	"github.com/seedline-dev/seedline/internal/session"
)

// NewRoleCmd creates the role command
func NewRoleCmd(opts ...AppOption) *cobra.Command {
	return &cobra.Command{
		Use:   "role [startup|investor]",
		Short: "Show or change the account's active role",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts...)
			if err != nil {
				return err
			}
			if err := requireSession(app); err != nil {
				return err
			}

			if len(args) == 0 {
				return runRolePicker(cmd.Context(), app)
			}

			role, err := session.ParseRole(args[0])
			if err != nil {
				return err
			}

			return runRoleSwitch(cmd.Context(), app, role)
		},
	}
}

func runRolePicker(ctx context.Context, app *App) error {
	current := app.store.Role()
	fmt.Printf("Current role: %s\n", current)

	roles := []session.Role{session.RoleStartup, session.RoleInvestor}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a role",
		Items:     roles,
		Templates: templates,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return fmt.Errorf("role selection cancelled: %w", err)
	}

	return runRoleSwitch(ctx, app, roles[index])
}

func runRoleSwitch(ctx context.Context, app *App, role session.Role) error {
	if role == app.store.Role() {
		fmt.Printf("Active role is already %s.\n", role)
		return nil
	}

	switcher := auth.NewRoleSwitcher(app.store, app.client)
	if err := switcher.Switch(ctx, role); err != nil {
		if errors.Is(err, auth.ErrSessionExpired) {
			return fmt.Errorf("session expired, run 'seedline login'")
		}
		return err
	}

	fmt.Printf("✓ Active role changed to %s.\n", role)
	return nil
}
