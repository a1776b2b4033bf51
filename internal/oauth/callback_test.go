package oauth

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seedline-dev/seedline/internal/api"
	"github.com/seedline-dev/seedline/internal/session"
)

func newTestCallbackServer(fake *fakeExchangeAPI) (*CallbackServer, *session.Store) {
	store := session.NewStore(session.NewMemoryStorage())
	adapter := NewAdapter(store, fake, ProviderGoogle)

	return NewCallbackServer("127.0.0.1:0", adapter, "state-1"), store
}

func serveGET(s *CallbackServer, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.router.ServeHTTP(rec, req)

	return rec
}

func TestCallback(t *testing.T) {
	fake := &fakeExchangeAPI{pair: &api.TokenPair{Access: "access-1", Refresh: "refresh-1"}}
	s, store := newTestCallbackServer(fake)

	rec := serveGET(s, "/oauth/callback?code=auth-code&state=state-1")

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != RouteWelcome {
		t.Errorf("Location = %q, want %q", loc, RouteWelcome)
	}
	if !store.IsAuthenticated() {
		t.Error("expected session established after callback")
	}
}

func TestCallback_StateMismatch(t *testing.T) {
	fake := &fakeExchangeAPI{pair: &api.TokenPair{Access: "access-1"}}
	s, store := newTestCallbackServer(fake)

	rec := serveGET(s, "/oauth/callback?code=auth-code&state=forged")

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != RouteLogin+"?error="+MarkerLoginFailed {
		t.Errorf("Location = %q", loc)
	}
	if fake.calls != 0 {
		t.Error("forged state must not reach the backend")
	}
	if store.IsAuthenticated() {
		t.Error("expected no session")
	}
}

func TestCallback_MissingCode(t *testing.T) {
	fake := &fakeExchangeAPI{}
	s, _ := newTestCallbackServer(fake)

	rec := serveGET(s, "/oauth/callback?state=state-1")

	if loc := rec.Header().Get("Location"); loc != RouteLogin+"?error="+MarkerMissingCode {
		t.Errorf("Location = %q", loc)
	}
}

func TestWelcomeDeliversSuccess(t *testing.T) {
	s, _ := newTestCallbackServer(&fakeExchangeAPI{})

	rec := serveGET(s, RouteWelcome)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Signed in") {
		t.Error("expected success page")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Errorf("Wait = %v, want nil", err)
	}
}

func TestLoginDeliversMarkerError(t *testing.T) {
	tests := []struct {
		marker string
		want   error
	}{
		{MarkerMissingCode, ErrMissingCode},
		{MarkerLoginFailed, ErrLoginFailed},
		{"something-else", ErrLoginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			s, _ := newTestCallbackServer(&fakeExchangeAPI{})

			rec := serveGET(s, RouteLogin+"?error="+tt.marker)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.Wait(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Wait = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOnlyFirstOutcomeCounts(t *testing.T) {
	fake := &fakeExchangeAPI{pair: &api.TokenPair{Access: "access-1"}}
	s, _ := newTestCallbackServer(fake)

	serveGET(s, RouteWelcome)
	serveGET(s, RouteLogin+"?error="+MarkerLoginFailed)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Errorf("Wait = %v, want outcome of the first page hit", err)
	}
}

func TestWait_ContextExpires(t *testing.T) {
	s, _ := newTestCallbackServer(&fakeExchangeAPI{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait = %v, want context.DeadlineExceeded", err)
	}
}

func TestStartAndShutdown(t *testing.T) {
	s, _ := newTestCallbackServer(&fakeExchangeAPI{})

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestStart_PortTaken(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to grab port: %v", err)
	}
	defer listener.Close()

	store := session.NewStore(session.NewMemoryStorage())
	adapter := NewAdapter(store, &fakeExchangeAPI{}, ProviderGoogle)
	s := NewCallbackServer(listener.Addr().String(), adapter, "state-1")

	if err := s.Start(); err == nil {
		s.Shutdown(context.Background())
		t.Fatal("expected Start to fail on a taken port")
	}
}
