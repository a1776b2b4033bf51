package commands

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/seedline-dev/seedline/internal/api"
	"github.com/seedline-dev/seedline/internal/config"
	"github.com/seedline-dev/seedline/internal/session"
)

func mintAccessToken(t *testing.T, ttl time.Duration) string {
	t.Helper()

	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl))}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	return raw
}

// newBackend starts a mock API server that is torn down with the test
func newBackend(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

// guardBackend fails the test on any request; commands under test are
// expected to stay off the network.
func guardBackend(t *testing.T) *httptest.Server {
	t.Helper()

	return newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusTeapot)
	}))
}

// testOptions wires a command against an in-memory session store and
// the given mock backend.
func testOptions(t *testing.T, backend *httptest.Server) ([]AppOption, *session.Store) {
	t.Helper()

	cfg := &config.Config{
		API: config.APIConfig{BaseURL: backend.URL, Timeout: 5 * time.Second},
		OAuth: config.OAuthConfig{
			ClientID:     "client-123",
			AuthorizeURL: "https://accounts.google.com/o/oauth2/v2/auth",
			CallbackAddr: "127.0.0.1:0",
			Scopes:       []string{"openid", "email"},
		},
		Renewal: config.RenewalConfig{Interval: 20 * time.Millisecond, LowWater: 5 * time.Minute},
		Logging: config.LoggingConfig{Level: "error", Format: "console"},
	}

	store := session.NewStore(session.NewMemoryStorage())
	client := api.New(backend.URL, store, api.WithTimeout(cfg.API.Timeout))

	return []AppOption{WithConfig(cfg), WithStore(store), WithClient(client)}, store
}

// seedSession signs the store in with a token that outlives the test
func seedSession(t *testing.T, store *session.Store, role session.Role) {
	t.Helper()

	if err := store.Login(mintAccessToken(t, time.Hour), "refresh-0", role); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
}

// execute runs a command with the given arguments, keeping cobra's
// usage output away from the test log.
func execute(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	return cmd.Execute()
}

// clearLoginEnv keeps credentials in the test environment from leaking
// into commands that fall back to env vars.
func clearLoginEnv(t *testing.T) {
	t.Helper()

	t.Setenv("SEEDLINE_EMAIL", "")
	t.Setenv("SEEDLINE_PASSWORD", "")
}
