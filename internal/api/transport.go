package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/seedline-dev/seedline/internal/logger"
)

// tokenSource provides the access token attached to outgoing requests.
// An empty token means no session; nothing is attached.
type tokenSource interface {
	AccessToken() string
}

// refresher exchanges the stored refresh token for fresh credentials.
// Implementations coalesce concurrent calls into a single exchange.
type refresher interface {
	Refresh(ctx context.Context) error
}

// Transport is an http.RoundTripper that attaches the session's bearer
// token to every request. When the backend answers 401 it refreshes the
// session once and replays the request with the new token; the replay's
// outcome is returned as-is, so a single request never triggers more
// than one refresh. Requests whose body cannot be rewound are not
// replayed, and a failed refresh leaves the original 401 standing.
type Transport struct {
	base    http.RoundTripper
	tokens  tokenSource
	refresh refresher
}

func NewTransport(base http.RoundTripper, tokens tokenSource) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &Transport{base: base, tokens: tokens}
}

// SetRefresher wires in the refresh path. Called once during startup,
// after the refresher (which itself depends on the API client) exists.
func (t *Transport) SetRefresher(r refresher) {
	t.refresh = r
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := ulid.Make().String()

	resp, err := t.send(req, requestID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || t.refresh == nil {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	log := logger.GetLogger()
	log.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("access token rejected, refreshing session")

	if err := t.refresh.Refresh(req.Context()); err != nil {
		log.Debug().Str("request_id", requestID).Err(err).Msg("session refresh failed")
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		retry.Body = body
	}

	return t.send(retry, requestID)
}

// send dispatches a clone of the request; RoundTrip must not modify
// the caller's request.
func (t *Transport) send(req *http.Request, requestID string) (*http.Response, error) {
	r := req.Clone(req.Context())
	if token := t.tokens.AccessToken(); token != "" {
		r.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	r.Header.Set("X-Request-ID", requestID)

	return t.base.RoundTrip(r)
}
