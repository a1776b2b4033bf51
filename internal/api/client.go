package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const defaultTimeout = 30 * time.Second

// Client talks to the seedline backend. Endpoints that establish or
// renew a session (login, register, token refresh, OAuth exchange) use
// a plain HTTP client so they never recurse through the refresh path;
// session endpoints go through the bearer Transport, which refreshes an
// expired access token and retries once.
type Client struct {
	baseURL   string
	transport *Transport
	plain     *http.Client
	authed    *http.Client
	validate  *validator.Validate
}

type Option func(*Client)

// WithTimeout overrides the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.plain.Timeout = timeout
		c.authed.Timeout = timeout
	}
}

// WithBaseTransport replaces the underlying round tripper while keeping
// the bearer handling on top. Tests use it to stub the network.
func WithBaseTransport(base http.RoundTripper) Option {
	return func(c *Client) {
		c.transport.base = base
		c.plain.Transport = base
	}
}

func New(baseURL string, tokens tokenSource, opts ...Option) *Client {
	transport := NewTransport(nil, tokens)

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		plain:     &http.Client{Timeout: defaultTimeout},
		authed:    &http.Client{Timeout: defaultTimeout, Transport: transport},
		validate:  newValidator(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetRefresher wires the session refresher into the bearer transport.
// The refresher depends on this client, so it is attached after both
// have been constructed.
func (c *Client) SetRefresher(r refresher) {
	c.transport.SetRefresher(r)
}

// TokenPair is an issued access/refresh token pair. The backend rotates
// the refresh token on every refresh, so both fields are usually set.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginRequest represents the credential login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates with email and password and returns fresh tokens
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	body := LoginRequest{Email: email, Password: password}

	var tokens TokenPair
	if err := c.doJSON(ctx, c.plain, http.MethodPost, "/api/v1/login/", body, http.StatusOK, &tokens); err != nil {
		return nil, err
	}

	return &tokens, nil
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// Refresh exchanges a refresh token for a fresh token pair
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var tokens TokenPair
	if err := c.doJSON(ctx, c.plain, http.MethodPost, "/api/token/refresh/", refreshRequest{Refresh: refreshToken}, http.StatusOK, &tokens); err != nil {
		return nil, err
	}

	return &tokens, nil
}

type oauthExchangeRequest struct {
	Provider string `json:"provider" validate:"required"`
	Code     string `json:"code" validate:"required"`
}

// ExchangeOAuthCode trades a provider authorization code for a seedline
// token pair. The provider secret exchange happens on the backend; the
// client only forwards the code.
func (c *Client) ExchangeOAuthCode(ctx context.Context, provider, code string) (*TokenPair, error) {
	body := oauthExchangeRequest{Provider: provider, Code: code}

	var tokens TokenPair
	if err := c.doJSON(ctx, c.plain, http.MethodPost, "/api/token/oauth/", body, http.StatusOK, &tokens); err != nil {
		return nil, err
	}

	return &tokens, nil
}

// RegisterRequest represents the account registration request body
type RegisterRequest struct {
	Username  string   `json:"username" validate:"required"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Email     string   `json:"email" validate:"required,email"`
	Phone     string   `json:"phone,omitempty"`
	Password  string   `json:"password" validate:"required,min=8"`
	Roles     []string `json:"roles,omitempty"`
}

// RegisteredUser is the user object returned by registration
type RegisteredUser struct {
	ID        string   `json:"user_id"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Roles     []string `json:"roles"`
}

// RegisterResponse represents the registration response. The backend
// issues tokens on registration so the new account is signed in
// immediately.
type RegisterResponse struct {
	User    RegisteredUser `json:"user"`
	Access  string         `json:"access"`
	Refresh string         `json:"refresh"`
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var created RegisterResponse
	if err := c.doJSON(ctx, c.plain, http.MethodPost, "/api/v1/register/", req, http.StatusCreated, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

type signOutRequest struct {
	Refresh string `json:"refresh"`
}

// SignOut invalidates the session's tokens on the backend
func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	return c.doJSON(ctx, c.authed, http.MethodPost, "/api/v1/logout/", signOutRequest{Refresh: refreshToken}, http.StatusOK, nil)
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ChangeRole asks the backend to switch the account's active role
func (c *Client) ChangeRole(ctx context.Context, role string) error {
	return c.doJSON(ctx, c.authed, http.MethodPost, "/api/v1/change-role/", changeRoleRequest{Role: role}, http.StatusOK, nil)
}

// Profile is the signed-in user's account information
type Profile struct {
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ActiveRole string `json:"active_role"`
}

// Profile fetches the signed-in user's account information
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, c.authed, http.MethodGet, "/api/v1/user/update/", nil, http.StatusOK, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

// InvestorHome fetches the investor-only landing content
func (c *Client) InvestorHome(ctx context.Context) (string, error) {
	var out messageResponse
	if err := c.doJSON(ctx, c.authed, http.MethodGet, "/api/v1/investor-only/", nil, http.StatusOK, &out); err != nil {
		return "", err
	}

	return out.Message, nil
}

// StartupHome fetches the startup-only landing content
func (c *Client) StartupHome(ctx context.Context) (string, error) {
	var out messageResponse
	if err := c.doJSON(ctx, c.authed, http.MethodGet, "/api/v1/startup-only/", nil, http.StatusOK, &out); err != nil {
		return "", err
	}

	return out.Message, nil
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordReset asks the backend to send a password reset email
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.doJSON(ctx, c.plain, http.MethodPost, "/api/v1/auth/users/reset_password/", passwordResetRequest{Email: email}, http.StatusNoContent, nil)
}

// doJSON sends a JSON request and decodes a JSON response. Request
// bodies are validated locally first so obviously malformed input never
// reaches the network; any status other than wantStatus is parsed into
// the error taxonomy.
func (c *Client) doJSON(ctx context.Context, client *http.Client, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		if err := c.validateBody(body); err != nil {
			return err
		}

		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		respBody, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) validateBody(body any) error {
	err := c.validate.Struct(body)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	fields := make(map[string][]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = append(fields[fe.Field()], validationMessage(fe))
	}

	return &ValidationError{Fields: fields}
}

// validationMessage mirrors the backend's wording so local and remote
// validation failures render the same way.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}
