package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/seedline-dev/seedline/internal/api"
	"github.com/seedline-dev/seedline/internal/session"
)

// ErrSessionExpired indicates the backend no longer accepts the
// session's credentials even after a refresh attempt
var ErrSessionExpired = errors.New("session expired, sign in again")

// roleAPI is the slice of the API client the switcher needs
type roleAPI interface {
	ChangeRole(ctx context.Context, role string) error
}

// RoleSwitcher coordinates role changes. The backend confirms the
// change before anything is persisted locally, so the stored role never
// disagrees with the account; on any failure the local role is left
// untouched.
type RoleSwitcher struct {
	store  *session.Store
	client roleAPI
}

func NewRoleSwitcher(store *session.Store, client roleAPI) *RoleSwitcher {
	return &RoleSwitcher{store: store, client: client}
}

// Switch changes the account's active role. A credential rejection
// (after the transport's refresh-and-retry) surfaces as
// ErrSessionExpired; any other failure is retryable.
func (s *RoleSwitcher) Switch(ctx context.Context, role session.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	if !s.store.IsAuthenticated() {
		return session.ErrNotAuthenticated
	}

	if err := s.client.ChangeRole(ctx, string(role)); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return ErrSessionExpired
		}
		return fmt.Errorf("failed to change role: %w", err)
	}

	return s.store.ChangeRole(role)
}
