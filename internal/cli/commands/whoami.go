package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(opts ...AppOption) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts...)
			if err != nil {
				return err
			}
			if err := requireSession(app); err != nil {
				return err
			}

			profile, err := app.client.Profile(cmd.Context())
			if err != nil {
				return friendlyAuthError(err)
			}

			name := strings.TrimSpace(profile.FirstName + " " + profile.LastName)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Email:\t%s\n", profile.Email)
			fmt.Fprintf(w, "Username:\t%s\n", profile.Username)
			if name != "" {
				fmt.Fprintf(w, "Name:\t%s\n", name)
			}
			fmt.Fprintf(w, "Role:\t%s\n", profile.ActiveRole)
			w.Flush()

			return nil
		},
	}
}
