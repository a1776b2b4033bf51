package commands

import (
	"context"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/seedline-dev/seedline/internal/api"
	"github.com/seedline-dev/seedline/internal/session"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(opts ...AppOption) *cobra.Command {
	var req api.RegisterRequest
	var password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a Seedline account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts...)
			if err != nil {
				return err
			}
			req.Password = password
			return runRegister(cmd.Context(), app, req, role)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Username, "username", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&role, "role", "", "Requested role (startup or investor)")

	return cmd
}

func runRegister(ctx context.Context, app *App, req api.RegisterRequest, role string) error {
	if req.Email == "" {
		return fmt.Errorf("email is required (use --email)")
	}
	if req.Username == "" {
		return fmt.Errorf("username is required (use --username)")
	}

	if role != "" {
		parsed, err := session.ParseRole(role)
		if err != nil {
			return err
		}
		if parsed == session.RoleUnassigned {
			return fmt.Errorf("choose %s or %s", session.RoleStartup, session.RoleInvestor)
		}
		req.Roles = []string{string(parsed)}
	}

	if req.Password == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("password is required in non-interactive mode (use --password)")
		}
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		fmt.Print("Confirm password: ")
		byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		if string(bytePassword) != string(byteConfirm) {
			return fmt.Errorf("passwords do not match")
		}
		req.Password = string(bytePassword)
	}

	created, err := app.client.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	// Registration issues tokens, so the new account is signed in
	// immediately
	if err := app.store.Login(created.Access, created.Refresh, ""); err != nil {
		return fmt.Errorf("account created but failed to save session: %w", err)
	}

	activeRole := syncRole(ctx, app)

	fmt.Println("✓ Account created!")
	fmt.Printf("  Account: %s\n", created.User.Email)
	if activeRole != session.RoleUnassigned {
		fmt.Printf("  Role: %s\n", activeRole)
	}
	fmt.Println("  Check your email for the activation link.")

	return nil
}
