package oauth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/seedline-dev/seedline/internal/api"
	"github.com/seedline-dev/seedline/internal/logger"
	"github.com/seedline-dev/seedline/internal/session"
)

// Routes the adapter can send the browser to after a callback
const (
	RouteWelcome = "/welcome"
	RouteLogin   = "/login"
)

// Error markers carried in the login route's query string
const (
	MarkerMissingCode = "missing_code"
	MarkerLoginFailed = "login_failed"
)

// Navigation is where the browser should land after a callback
type Navigation struct {
	Route string
}

func loginFailure(marker string) Navigation {
	return Navigation{Route: fmt.Sprintf("%s?error=%s", RouteLogin, marker)}
}

// exchangeAPI is the slice of the API client the adapter needs
type exchangeAPI interface {
	ExchangeOAuthCode(ctx context.Context, provider, code string) (*api.TokenPair, error)
}

// Adapter completes a provider redirect. It extracts the authorization
// code, exchanges it at the backend and feeds the issued tokens into
// the session store. The code itself never appears in logs, errors or
// navigation targets.
type Adapter struct {
	store    *session.Store
	client   exchangeAPI
	provider string
}

func NewAdapter(store *session.Store, client exchangeAPI, provider string) *Adapter {
	return &Adapter{store: store, client: client, provider: provider}
}

// HandleRedirect processes the query parameters the provider redirected
// back with and reports where the browser should land. A redirect
// without a code fails before any backend call; a failed exchange
// leaves the session store untouched.
func (a *Adapter) HandleRedirect(ctx context.Context, query url.Values) Navigation {
	log := logger.GetLogger()

	code := query.Get("code")
	if code == "" {
		log.Debug().Str("provider", a.provider).Msg("provider redirect carried no authorization code")
		return loginFailure(MarkerMissingCode)
	}

	tokens, err := a.client.ExchangeOAuthCode(ctx, a.provider, code)
	if err != nil {
		log.Warn().Err(err).Str("provider", a.provider).Msg("authorization code exchange failed")
		return loginFailure(MarkerLoginFailed)
	}

	if err := a.store.Login(tokens.Access, tokens.Refresh, ""); err != nil {
		log.Error().Err(err).Msg("failed to persist session")
		return loginFailure(MarkerLoginFailed)
	}

	return Navigation{Route: RouteWelcome}
}

// HandleRedirectURL parses a full redirect URL, for flows where the
// user pastes it into the terminal by hand.
func (a *Adapter) HandleRedirectURL(ctx context.Context, raw string) Navigation {
	parsed, err := url.Parse(raw)
	if err != nil {
		return loginFailure(MarkerMissingCode)
	}

	return a.HandleRedirect(ctx, parsed.Query())
}
