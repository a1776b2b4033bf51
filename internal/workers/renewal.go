package workers

import (
	"context"
	"errors"
	"time"

	"github.com/seedline-dev/seedline/internal/logger"
	"github.com/seedline-dev/seedline/internal/session"
)

// sessionRefresher renews the session's tokens, coalescing with any
// refresh already in flight
type sessionRefresher interface {
	Refresh(ctx context.Context) error
}

// RenewalScheduler keeps the session's access token fresh while the
// process runs. Each tick it checks the token's remaining lifetime:
// inside the low-water window it refreshes proactively, and an already
// expired token or a failed refresh signs the user out and stops the
// scheduler.
type RenewalScheduler struct {
	store     *session.Store
	refresher sessionRefresher
	interval  time.Duration
	lowWater  time.Duration
}

func NewRenewalScheduler(store *session.Store, refresher sessionRefresher, interval, lowWater time.Duration) *RenewalScheduler {
	return &RenewalScheduler{
		store:     store,
		refresher: refresher,
		interval:  interval,
		lowWater:  lowWater,
	}
}

// Run blocks until the context is cancelled or the session ends. The
// first check runs immediately, then once per interval.
func (s *RenewalScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if done := s.check(ctx); done {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if done := s.check(ctx); done {
				return nil
			}
		}
	}
}

// check runs one renewal pass. It reports true when the scheduler
// should stop because the session ended or cannot be renewed.
func (s *RenewalScheduler) check(ctx context.Context) bool {
	log := logger.GetLogger()

	if !s.store.IsAuthenticated() {
		log.Debug().Msg("no active session, stopping renewal")
		return true
	}

	expiry, err := s.store.AccessTokenExpiry()
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return true
		}
		log.Warn().Err(err).Msg("failed to read token expiry, signing out")
		if err := s.store.Logout(); err != nil {
			log.Error().Err(err).Msg("failed to clear session")
		}
		return true
	}

	remaining := time.Until(expiry)
	if remaining <= 0 {
		log.Info().Msg("access token expired, signing out")
		if err := s.store.Logout(); err != nil {
			log.Error().Err(err).Msg("failed to clear session")
		}
		return true
	}

	if remaining > s.lowWater {
		log.Debug().Dur("remaining", remaining).Msg("access token still fresh")
		return false
	}

	log.Debug().Dur("remaining", remaining).Msg("access token near expiry, refreshing")

	if err := s.refresher.Refresh(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return true
		}
		if errors.Is(err, session.ErrSessionChanged) {
			// a newer session took over mid-refresh; keep renewing it
			return false
		}
		log.Warn().Err(err).Msg("session renewal failed")
		return true
	}

	return false
}
