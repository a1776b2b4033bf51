package oauth

import (
	"net/url"
	"testing"
)

func TestAuthorizeURL(t *testing.T) {
	p := NewProvider(
		ProviderGoogle,
		"client-123",
		"https://accounts.google.com/o/oauth2/v2/auth",
		"http://127.0.0.1:8765/oauth/callback",
		[]string{"openid", "email"},
	)

	raw := p.AuthorizeURL("state-1")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse authorize URL: %v", err)
	}

	if parsed.Host != "accounts.google.com" {
		t.Errorf("host = %q", parsed.Host)
	}

	q := parsed.Query()
	if q.Get("client_id") != "client-123" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "http://127.0.0.1:8765/oauth/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if q.Get("state") != "state-1" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %q", q.Get("response_type"))
	}
}

func TestNewState(t *testing.T) {
	first, err := NewState()
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	second, err := NewState()
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}

	if len(first) != 32 {
		t.Errorf("state length = %d, want 32 hex chars", len(first))
	}
	if first == second {
		t.Error("states must not repeat")
	}
}
