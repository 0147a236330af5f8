// Package hosted is the AuthProvider implementation backed by the
// hosted auth service. Sign-in uses the OAuth2 password grant, session
// retrieval verifies the access token against the provider's keys and
// resolves the user through the userinfo endpoint. The service object
// (discovery, verifier, HTTP client) is process-wide; each login
// session gets its own Client holding its own current-session view.
package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/internal/config"
	errs "github.com/tourcompanion/portal-server/internal/errors"
)

// Service holds the process-wide connection to the hosted provider.
type Service struct {
	baseURL    string
	provider   *oidc.Provider
	verifier   *oidc.IDTokenVerifier
	oauthCfg   *oauth2.Config
	httpClient *http.Client
}

// NewService discovers the provider's endpoints and prepares the token
// verifier. ctx bounds discovery only.
func NewService(ctx context.Context, cfg config.BackendConfig) (*Service, error) {
	baseURL := cfg.GetBackendURL()
	if baseURL == "" {
		return nil, errors.New("[hosted.NewService] backend URL is required")
	}

	provider, err := oidc.NewProvider(ctx, baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[hosted.NewService] oidc.NewProvider")
	}

	return &Service{
		baseURL:  baseURL,
		provider: provider,
		// Access tokens carry the provider's audience, not ours, so
		// the audience check is skipped and only signature and expiry
		// are enforced here.
		verifier: provider.Verifier(&oidc.Config{SkipClientIDCheck: true}),
		oauthCfg: &oauth2.Config{
			ClientID:     cfg.GetBackendClientID(),
			ClientSecret: cfg.GetBackendClientSecret(),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

var _ backend.ProviderFactory = (*Service)(nil)

// NewClient returns a per-login-session AuthProvider bound to this
// service.
func (s *Service) NewClient() backend.AuthProvider {
	return &Client{svc: s, hub: backend.NewChangeHub()}
}

// ParseToken verifies an access token and returns its claims. Used by
// the claims role-check strategy.
func (s *Service) ParseToken(ctx context.Context, raw string) (map[string]any, error) {
	token, err := s.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.ParseToken] verifier.Verify")
	}
	claims := map[string]any{}
	if err := token.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "[Service.ParseToken] token.Claims")
	}
	return claims, nil
}

// Client implements backend.AuthProvider for one login session.
type Client struct {
	svc *Service
	hub *backend.ChangeHub

	mu      sync.Mutex
	current *backend.Session
}

var _ backend.AuthProvider = (*Client)(nil)

type userClaims struct {
	Subject   string    `json:"sub"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Client) userFromToken(ctx context.Context, accessToken string) (*backend.User, error) {
	info, err := c.svc.provider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.userFromToken] provider.UserInfo")
	}

	var claims userClaims
	if err := info.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "[Client.userFromToken] info.Claims")
	}

	return &backend.User{
		ID:        info.Subject,
		Email:     claims.Email,
		CreatedAt: claims.CreatedAt,
		Role:      claims.Role,
	}, nil
}

// GetSession verifies the client's current access token and refreshes
// the user view from the userinfo endpoint. A client that has never
// signed in has no session, which is not an error.
func (c *Client) GetSession(ctx context.Context) (*backend.Session, error) {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	if current == nil {
		return nil, nil
	}

	if _, err := c.svc.verifier.Verify(ctx, current.AccessToken); err != nil {
		return nil, errors.Wrap(err, "[Client.GetSession] token no longer valid")
	}

	user, err := c.userFromToken(ctx, current.AccessToken)
	if err != nil {
		return nil, err
	}

	session := &backend.Session{
		User:         user,
		AccessToken:  current.AccessToken,
		RefreshToken: current.RefreshToken,
	}

	c.mu.Lock()
	c.current = session
	c.mu.Unlock()

	return session, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	ctx = oidc.ClientContext(ctx, c.svc.httpClient)

	token, err := c.svc.oauthCfg.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			(retrieveErr.Response.StatusCode == http.StatusBadRequest || retrieveErr.Response.StatusCode == http.StatusUnauthorized) {
			return nil, errors.Wrap(errs.ErrInvalidCredentials, "[Client.SignInWithPassword]")
		}
		return nil, errors.Wrap(err, "[Client.SignInWithPassword] password grant")
	}

	user, err := c.userFromToken(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	session := &backend.Session{
		User:         user,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}

	c.mu.Lock()
	c.current = session
	c.mu.Unlock()

	c.hub.Emit(backend.EventSignedIn, session)
	return session, nil
}

// SignUp registers a new account through the provider's signup
// endpoint. Most providers require email confirmation, so the returned
// session has a user but no tokens.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*backend.Session, error) {
	payload, err := json.Marshal(map[string]any{
		"email":    email,
		"password": password,
		"data":     metadata,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.SignUp] marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.svc.baseURL+"/signup", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.SignUp] build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.svc.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errs.ErrProviderUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("[Client.SignUp] provider returned %s", resp.Status)
	}

	var user backend.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "[Client.SignUp] decode response")
	}

	return &backend.Session{User: &user}, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.current
	c.current = nil
	c.mu.Unlock()

	if current != nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.svc.baseURL+"/logout", nil)
		if err != nil {
			return errors.Wrap(err, "[Client.SignOut] build request")
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", current.AccessToken))

		resp, err := c.svc.httpClient.Do(req)
		if err != nil {
			// The local session is already gone; the provider-side
			// revocation failing is not fatal.
			c.hub.Emit(backend.EventSignedOut, nil)
			return errors.Wrap(errs.ErrProviderUnavailable, err.Error())
		}
		resp.Body.Close()
	}

	c.hub.Emit(backend.EventSignedOut, nil)
	return nil
}

func (c *Client) OnAuthStateChange(cb backend.ChangeCallback) backend.Subscription {
	return c.hub.Subscribe(cb)
}
