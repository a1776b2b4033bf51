package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/seedline-dev/seedline/internal/api"
	"github.com/seedline-dev/seedline/internal/logger"
	"github.com/seedline-dev/seedline/internal/session"
)

const refreshTimeout = 30 * time.Second

// ErrNoRefreshToken indicates the session has nothing to renew with
var ErrNoRefreshToken = errors.New("no refresh token available")

// tokenAPI is the slice of the API client the refresher needs
type tokenAPI interface {
	Refresh(ctx context.Context, refreshToken string) (*api.TokenPair, error)
}

// Refresher renews the session's tokens against the backend. However
// many callers ask concurrently, exactly one exchange runs and every
// caller observes its outcome. A failed exchange forces a logout of the
// session generation it started under, never of a newer one.
type Refresher struct {
	store  *session.Store
	client tokenAPI
	group  singleflight.Group
}

func NewRefresher(store *session.Store, client tokenAPI) *Refresher {
	return &Refresher{store: store, client: client}
}

// Refresh renews the session's tokens, sharing any exchange already in
// flight. The caller's context only governs its own wait; the exchange
// itself runs on a detached deadline because other callers may be
// waiting on it too.
func (r *Refresher) Refresh(ctx context.Context) error {
	ch := r.group.DoChan("refresh", func() (any, error) {
		return nil, r.refresh()
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Refresher) refresh() error {
	log := logger.GetLogger()

	generation := r.store.Generation()
	refreshToken := r.store.RefreshToken()
	if refreshToken == "" {
		if err := r.store.LogoutIfGeneration(generation); err != nil {
			log.Error().Err(err).Msg("failed to clear session")
		}
		return ErrNoRefreshToken
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	tokens, err := r.client.Refresh(ctx, refreshToken)
	if err != nil {
		log.Debug().Err(err).Msg("token refresh failed, clearing session")
		if logoutErr := r.store.LogoutIfGeneration(generation); logoutErr != nil {
			log.Error().Err(logoutErr).Msg("failed to clear session after refresh failure")
		}
		return fmt.Errorf("failed to refresh session: %w", err)
	}

	if err := r.store.UpdateTokens(generation, tokens.Access, tokens.Refresh); err != nil {
		return err
	}

	log.Debug().Msg("session tokens refreshed")

	return nil
}
