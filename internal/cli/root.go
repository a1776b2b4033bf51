package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seedline-dev/seedline/internal/cli/commands"
	"github.com/seedline-dev/seedline/internal/config"
	"github.com/seedline-dev/seedline/internal/logger"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "seedline",
	Short: "Seedline - connect startups and investors",
	Long: `Seedline CLI - Manage your Seedline account and session.

Seedline connects startups raising capital with investors. The CLI signs
in with email or Google, keeps the session's tokens fresh and switches
the account's active role.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("seedline version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewRoleCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewHomeCmd())
	rootCmd.AddCommand(commands.NewKeepaliveCmd())
	rootCmd.AddCommand(commands.NewResetPasswordCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
