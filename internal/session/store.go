package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/seedline-dev/seedline/internal/logger"
	"github.com/seedline-dev/seedline/internal/token"
)

// ErrSessionChanged indicates the session was replaced or cleared while
// an operation was in flight, so the operation's result was discarded.
var ErrSessionChanged = errors.New("session changed while operation was in flight")

// ErrNotAuthenticated indicates no session is active
var ErrNotAuthenticated = errors.New("not authenticated")

// Store is the single owner of session state. Every read and write of
// credential material goes through it. Mutations are serialized by a
// mutex and write Storage before memory, so observers never see
// in-memory state that was not persisted first.
//
// The generation counter identifies the current session epoch. Login
// and Logout bump it; operations that complete against an older
// generation are rejected instead of resurrecting a replaced session.
type Store struct {
	mu      sync.RWMutex
	storage Storage

	authenticated bool
	role          Role
	accessToken   string
	refreshToken  string
	generation    uint64
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage, role: RoleUnassigned}
}

// Initialize loads the persisted session into memory. An expired or
// unreadable access token clears the stored session and the client
// starts logged out; only storage failures are reported as errors.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.GetLogger()

	access, err := s.storage.Get(KeyAccessToken)
	if errors.Is(err, ErrKeyNotFound) {
		s.resetLocked()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	expiry, err := token.Expiry(access)
	if err != nil || !expiry.After(time.Now()) {
		log.Debug().Msg("stored access token is expired, clearing session")
		if err := s.deleteStorageLocked(); err != nil {
			return err
		}
		s.resetLocked()
		return nil
	}

	refresh, err := s.storage.Get(KeyRefreshToken)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return fmt.Errorf("failed to load refresh token: %w", err)
	}

	role := RoleUnassigned
	if stored, err := s.storage.Get(KeyRole); err == nil {
		if parsed, err := ParseRole(stored); err == nil {
			role = parsed
		}
	}

	s.authenticated = true
	s.accessToken = access
	s.refreshToken = refresh
	s.role = role

	log.Debug().Str("role", string(role)).Time("expires", expiry).Msg("session restored")

	return nil
}

// Login replaces the session with freshly issued credentials and
// starts a new session generation. An empty role clears any previously
// persisted role; callers sync the real role from the backend after.
func (s *Store) Login(access, refresh string, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(KeyAccessToken, access); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if refresh != "" {
		if err := s.storage.Set(KeyRefreshToken, refresh); err != nil {
			return fmt.Errorf("failed to persist refresh token: %w", err)
		}
	} else if err := s.storage.Delete(KeyRefreshToken); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	if role != "" {
		if err := s.storage.Set(KeyRole, string(role)); err != nil {
			return fmt.Errorf("failed to persist role: %w", err)
		}
	} else if err := s.storage.Delete(KeyRole); err != nil {
		return fmt.Errorf("failed to clear role: %w", err)
	}

	s.authenticated = true
	s.accessToken = access
	s.refreshToken = refresh
	s.role = role
	if role == "" {
		s.role = RoleUnassigned
	}
	s.generation++

	return nil
}

// Logout clears the session from storage and memory. Logging out while
// already logged out is a no-op.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logoutLocked()
}

// LogoutIfGeneration clears the session only if the given generation is
// still current. A failure observed against a replaced session must not
// tear down its successor.
func (s *Store) LogoutIfGeneration(generation uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return nil
	}

	return s.logoutLocked()
}

// ChangeRole records a backend-confirmed role change. It never touches
// credential material.
func (s *Store) ChangeRole(role Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(KeyRole, string(role)); err != nil {
		return fmt.Errorf("failed to persist role: %w", err)
	}
	s.role = role

	return nil
}

// UpdateTokens installs refreshed tokens for the session generation the
// refresh started under. A stale generation means the user logged out
// or logged in again while the refresh was in flight; the tokens are
// discarded and ErrSessionChanged is returned. An empty refresh token
// keeps the existing one (the backend does not always rotate it).
func (s *Store) UpdateTokens(generation uint64, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return ErrSessionChanged
	}

	if err := s.storage.Set(KeyAccessToken, access); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if refresh != "" {
		if err := s.storage.Set(KeyRefreshToken, refresh); err != nil {
			return fmt.Errorf("failed to persist refresh token: %w", err)
		}
	}

	s.accessToken = access
	if refresh != "" {
		s.refreshToken = refresh
	}

	return nil
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.authenticated
}

func (s *Store) Role() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.role
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.refreshToken
}

// Generation returns the current session generation. Callers capture it
// before starting a refresh and pass it back to UpdateTokens or
// LogoutIfGeneration when the refresh completes.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.generation
}

// AccessTokenExpiry reports when the current access token expires
func (s *Store) AccessTokenExpiry() (time.Time, error) {
	s.mu.RLock()
	access := s.accessToken
	s.mu.RUnlock()

	if access == "" {
		return time.Time{}, ErrNotAuthenticated
	}

	return token.Expiry(access)
}

func (s *Store) logoutLocked() error {
	if err := s.deleteStorageLocked(); err != nil {
		return err
	}
	s.resetLocked()
	s.generation++

	return nil
}

func (s *Store) deleteStorageLocked() error {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyRole} {
		if err := s.storage.Delete(key); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}

	return nil
}

func (s *Store) resetLocked() {
	s.authenticated = false
	s.accessToken = ""
	s.refreshToken = ""
	s.role = RoleUnassigned
}
