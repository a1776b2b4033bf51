package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/seedline-dev/seedline/internal/logger"
	"github.com/seedline-dev/seedline/internal/oauth"
	"github.com/seedline-dev/seedline/internal/session"
)

const providerLoginTimeout = 5 * time.Minute

// NewLoginCmd creates the login command
func NewLoginCmd(opts ...AppOption) *cobra.Command {
	var email, password, provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Seedline",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts...)
			if err != nil {
				return err
			}
			if provider != "" {
				return runProviderLogin(cmd.Context(), app, provider)
			}
			return runLogin(cmd.Context(), app, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set SEEDLINE_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set SEEDLINE_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&provider, "provider", "", "Sign in through an identity provider (google)")

	return cmd
}

func runLogin(ctx context.Context, app *App, email, password string) error {
	// Environment variables cover CI and scripts
	if email == "" {
		email = os.Getenv("SEEDLINE_EMAIL")
	}
	if password == "" {
		password = os.Getenv("SEEDLINE_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or SEEDLINE_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or SEEDLINE_PASSWORD env var)")
		}
	}

	tokens, err := app.client.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := app.store.Login(tokens.Access, tokens.Refresh, ""); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	role := syncRole(ctx, app)

	fmt.Println("✓ Signed in!")
	fmt.Printf("  Account: %s\n", email)
	if role != session.RoleUnassigned {
		fmt.Printf("  Role: %s\n", role)
	}

	return nil
}

func runProviderLogin(ctx context.Context, app *App, provider string) error {
	if provider != oauth.ProviderGoogle {
		return fmt.Errorf("unsupported provider %q (supported: %s)", provider, oauth.ProviderGoogle)
	}

	state, err := oauth.NewState()
	if err != nil {
		return err
	}

	redirectURL := fmt.Sprintf("http://%s/oauth/callback", app.cfg.OAuth.CallbackAddr)
	idp := oauth.NewProvider(provider, app.cfg.OAuth.ClientID, app.cfg.OAuth.AuthorizeURL, redirectURL, app.cfg.OAuth.Scopes)
	adapter := oauth.NewAdapter(app.store, app.client, idp.Name())

	server := oauth.NewCallbackServer(app.cfg.OAuth.CallbackAddr, adapter, state)
	if err := server.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.GetLogger().Warn().Err(err).Msg("failed to shut down callback server")
		}
	}()

	authorizeURL := idp.AuthorizeURL(state)
	fmt.Println("Opening your browser to sign in...")
	fmt.Printf("If it does not open, visit:\n  %s\n", authorizeURL)
	if err := openBrowser(authorizeURL); err != nil {
		logger.GetLogger().Debug().Err(err).Msg("failed to open browser")
	}

	waitCtx, cancel := context.WithTimeout(ctx, providerLoginTimeout)
	defer cancel()

	if err := server.Wait(waitCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("sign-in timed out after %s", providerLoginTimeout)
		}
		return err
	}

	role := syncRole(ctx, app)

	fmt.Println("✓ Signed in!")
	if role != session.RoleUnassigned {
		fmt.Printf("  Role: %s\n", role)
	}

	return nil
}
