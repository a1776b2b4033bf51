package oauth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/oauth2"
)

// ProviderGoogle is the only identity provider the backend accepts
const ProviderGoogle = "google"

// Provider is the identity-provider half of the browser login flow. It
// builds the URL the user's browser visits to authorize; the provider
// then redirects back to the local callback with an authorization code.
// The code is exchanged by the backend, so no client secret lives here.
type Provider struct {
	name   string
	config *oauth2.Config
}

func NewProvider(name, clientID, authorizeURL, redirectURL string, scopes []string) *Provider {
	return &Provider{
		name: name,
		config: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURL,
			Scopes:      scopes,
			Endpoint:    oauth2.Endpoint{AuthURL: authorizeURL},
		},
	}
}

func (p *Provider) Name() string {
	return p.name
}

// AuthorizeURL returns the provider authorization URL bound to state
func (p *Provider) AuthorizeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// NewState returns an unguessable value that ties an authorization
// round-trip to this process
func NewState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
