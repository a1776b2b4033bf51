package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seedline-dev/seedline/internal/workers"
)

// NewKeepaliveCmd creates the keepalive command. It runs the renewal
// scheduler in the foreground so the stored session stays usable by
// other tools for as long as the process runs.
func NewKeepaliveCmd(opts ...AppOption) *cobra.Command {
	return &cobra.Command{
		Use:   "keepalive",
		Short: "Keep the session's tokens fresh until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts...)
			if err != nil {
				return err
			}
			if err := requireSession(app); err != nil {
				return err
			}

			scheduler := workers.NewRenewalScheduler(
				app.store,
				app.refresher,
				app.cfg.Renewal.Interval,
				app.cfg.Renewal.LowWater,
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Println("Keeping the session fresh. Press Ctrl-C to stop.")

			if err := scheduler.Run(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Println("\nStopped.")
					return nil
				}
				return err
			}

			// Run returned without cancellation: the session ended
			if !app.store.IsAuthenticated() {
				return fmt.Errorf("session ended, run 'seedline login'")
			}

			return nil
		},
	}
}
