package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedline-dev/seedline/internal/api"
	"github.com/seedline-dev/seedline/internal/session"
)

type fakeRoleAPI struct {
	mu    sync.Mutex
	calls int
	roles []string
	err   error
}

func (f *fakeRoleAPI) ChangeRole(ctx context.Context, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.roles = append(f.roles, role)
	return f.err
}

func TestSwitch(t *testing.T) {
	store, storage := newLoggedInStore(t)
	fake := &fakeRoleAPI{}

	s := NewRoleSwitcher(store, fake)
	require.NoError(t, s.Switch(context.Background(), session.RoleInvestor))

	require.Equal(t, session.RoleInvestor, store.Role())
	require.Equal(t, []string{"investor"}, fake.roles)

	persisted, err := storage.Get(session.KeyRole)
	require.NoError(t, err)
	require.Equal(t, "investor", persisted)
}

func TestSwitch_BackendFailureLeavesRole(t *testing.T) {
	store, _ := newLoggedInStore(t)
	fake := &fakeRoleAPI{err: &api.APIError{StatusCode: 500, Message: "try later"}}

	s := NewRoleSwitcher(store, fake)
	err := s.Switch(context.Background(), session.RoleInvestor)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSessionExpired)

	// Local role only moves once the backend has confirmed
	require.Equal(t, session.RoleStartup, store.Role())
}

func TestSwitch_UnauthorizedMeansExpiredSession(t *testing.T) {
	store, _ := newLoggedInStore(t)
	fake := &fakeRoleAPI{err: fmt.Errorf("%w: token is invalid", api.ErrUnauthorized)}

	s := NewRoleSwitcher(store, fake)
	err := s.Switch(context.Background(), session.RoleInvestor)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Equal(t, session.RoleStartup, store.Role())
}

func TestSwitch_RejectsInvalidRole(t *testing.T) {
	store, _ := newLoggedInStore(t)
	fake := &fakeRoleAPI{}

	s := NewRoleSwitcher(store, fake)
	require.Error(t, s.Switch(context.Background(), session.Role("admin")))
	require.Equal(t, 0, fake.calls)
}

func TestSwitch_RequiresSession(t *testing.T) {
	store := session.NewStore(session.NewMemoryStorage())
	fake := &fakeRoleAPI{}

	s := NewRoleSwitcher(store, fake)
	err := s.Switch(context.Background(), session.RoleInvestor)
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
	require.Equal(t, 0, fake.calls)
}
