package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/seedline-dev/seedline/internal/api"
	"github.com/seedline-dev/seedline/internal/logger"
	"github.com/seedline-dev/seedline/internal/session"
)

// requireSession is the guard used by commands that need a signed-in
// user before doing anything.
func requireSession(app *App) error {
	if !app.store.IsAuthenticated() {
		return fmt.Errorf("not signed in (run 'seedline login')")
	}

	return nil
}

// friendlyAuthError rewrites a credential rejection into a hint the
// user can act on. The transport already refreshed and retried once, so
// by the time a command sees this error the session is gone.
func friendlyAuthError(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("session expired, run 'seedline login'")
	}

	return err
}

// syncRole pulls the account's active role into the session store after
// a sign-in. The role is advisory until fetched, so failures only log.
func syncRole(ctx context.Context, app *App) session.Role {
	profile, err := app.client.Profile(ctx)
	if err != nil {
		logger.GetLogger().Debug().Err(err).Msg("failed to fetch profile for role sync")
		return app.store.Role()
	}

	role, err := session.ParseRole(profile.ActiveRole)
	if err != nil {
		return app.store.Role()
	}

	if err := app.store.ChangeRole(role); err != nil {
		logger.GetLogger().Debug().Err(err).Msg("failed to store role")
	}

	return app.store.Role()
}
