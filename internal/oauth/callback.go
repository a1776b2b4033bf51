package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seedline-dev/seedline/internal/logger"
)

// Outcomes of the browser login flow
var (
	ErrMissingCode = errors.New("provider redirect was missing the authorization code")
	ErrLoginFailed = errors.New("signing in with the provider failed")
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head><title>Seedline</title></head>
<body style="font-family: sans-serif; margin: 4em auto; max-width: 40em;">
<h1>%s</h1>
<p>%s</p>
</body>
</html>`

// CallbackServer is a short-lived loopback HTTP server that receives
// the provider redirect during a browser login. It verifies the state
// value, hands the callback to the Adapter and renders the route the
// Adapter navigated to.
type CallbackServer struct {
	addr    string
	adapter *Adapter
	state   string
	router  *gin.Engine
	srv     *http.Server
	result  chan error
}

func NewCallbackServer(addr string, adapter *Adapter, state string) *CallbackServer {
	s := &CallbackServer{
		addr:    addr,
		adapter: adapter,
		state:   state,
		result:  make(chan error, 1),
	}

	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(loggingMiddleware())

	s.router.GET("/oauth/callback", s.handleCallback)
	s.router.GET(RouteLogin, s.handleLogin)
	s.router.GET(RouteWelcome, s.handleWelcome)

	return s
}

// Start begins serving on the loopback address. It fails immediately
// when the port is taken, before the browser is opened.
func (s *CallbackServer) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GetLogger().Error().Err(err).Msg("callback server error")
		}
	}()

	return nil
}

// Wait blocks until the browser flow completes or the context expires
func (s *CallbackServer) Wait(ctx context.Context) error {
	select {
	case err := <-s.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the server gracefully
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	return s.srv.Shutdown(ctx)
}

func (s *CallbackServer) handleCallback(c *gin.Context) {
	if c.Query("state") != s.state {
		logger.GetLogger().Warn().Msg("state mismatch on oauth callback")
		c.Redirect(http.StatusFound, loginFailure(MarkerLoginFailed).Route)
		return
	}

	nav := s.adapter.HandleRedirect(c.Request.Context(), c.Request.URL.Query())
	c.Redirect(http.StatusFound, nav.Route)
}

func (s *CallbackServer) handleWelcome(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, pageTemplate, "Signed in", "You can close this tab and return to your terminal.")
	s.deliver(nil)
}

func (s *CallbackServer) handleLogin(c *gin.Context) {
	var outcome error
	message := "Sign-in could not be completed. Start again from your terminal."

	switch c.Query("error") {
	case MarkerMissingCode:
		outcome = ErrMissingCode
		message = "The provider response was missing an authorization code. Start the sign-in again from your terminal."
	case MarkerLoginFailed:
		outcome = ErrLoginFailed
		message = "Signing in with the provider failed. Start the sign-in again from your terminal."
	default:
		outcome = ErrLoginFailed
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, pageTemplate, "Sign-in failed", message)
	s.deliver(outcome)
}

// deliver reports the flow's outcome once; later callbacks only render
func (s *CallbackServer) deliver(err error) {
	select {
	case s.result <- err:
	default:
	}
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.GetLogger().Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("callback request")
	}
}
