package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/seedline-dev/seedline/internal/token"
)

// NewStatusCmd creates the status command. It reads only local session
// state and never touches the network.
func NewStatusCmd(opts ...AppOption) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the local session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts...)
			if err != nil {
				return err
			}

			if !app.store.IsAuthenticated() {
				fmt.Println("Not signed in.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Signed in:\tyes\n")
			if claims, err := token.Decode(app.store.AccessToken()); err == nil && claims.UserID != "" {
				fmt.Fprintf(w, "User ID:\t%s\n", claims.UserID)
			}
			fmt.Fprintf(w, "Role:\t%s\n", app.store.Role())

			expiry, err := app.store.AccessTokenExpiry()
			if err == nil {
				fmt.Fprintf(w, "Token expires:\t%s (in %s)\n",
					expiry.Local().Format(time.RFC1123),
					time.Until(expiry).Round(time.Second),
				)
			}
			w.Flush()

			return nil
		},
	}
}
