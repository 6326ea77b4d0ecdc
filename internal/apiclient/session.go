package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vidfriends/admin/internal/logging"
	"github.com/vidfriends/admin/internal/models"
)

// Session is the authenticated operator the console acts on behalf of. It
// renews the access token with the refresh token when the API answers 401.
type Session struct {
	client *Client
	user   models.User

	mu     sync.Mutex
	tokens models.SessionTokens

	refreshes singleflight.Group
}

// NewSession wraps an already authenticated identity. Mostly used by tests.
func NewSession(client *Client, user models.User, tokens models.SessionTokens) *Session {
	s := &Session{client: client, user: user, tokens: tokens}
	if client != nil && tokens.AccessToken != "" {
		client.SetToken(tokens.AccessToken)
		client.setRefresher(s.refresh)
	}
	return s
}

// CurrentUser returns the signed-in user.
func (s *Session) CurrentUser() models.User {
	if s == nil {
		return models.User{}
	}
	return s.user
}

// Tokens returns the current token pair.
func (s *Session) Tokens() models.SessionTokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// Logout revokes the refresh token and clears the client credentials.
func (s *Session) Logout(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}

	s.mu.Lock()
	refreshToken := s.tokens.RefreshToken
	s.tokens = models.SessionTokens{}
	s.mu.Unlock()

	defer func() {
		s.client.setRefresher(nil)
		s.client.SetToken("")
	}()
	if refreshToken == "" {
		return nil
	}
	body := map[string]string{"refreshToken": refreshToken}
	if err := s.client.send(ctx, http.MethodPost, "/api/auth/logout", body, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// refresh exchanges the refresh token for a new pair. stale is the access
// token the rejected request carried; when it is no longer current another
// request already renewed the session and nothing is sent.
func (s *Session) refresh(ctx context.Context, stale string) error {
	_, err, _ := s.refreshes.Do("refresh", func() (any, error) {
		s.mu.Lock()
		current := s.tokens
		s.mu.Unlock()

		if current.AccessToken != stale {
			return nil, nil
		}
		if current.RefreshToken == "" {
			return nil, ErrUnauthorized
		}

		var resp loginResponse
		body := map[string]string{"refreshToken": current.RefreshToken}
		if err := s.client.send(ctx, http.MethodPost, "/api/auth/refresh", body, &resp); err != nil {
			return nil, fmt.Errorf("refresh session: %w", err)
		}
		if resp.Tokens.AccessToken == "" {
			return nil, fmt.Errorf("refresh session: response carried no access token")
		}

		s.mu.Lock()
		s.tokens = resp.Tokens
		s.mu.Unlock()
		s.client.SetToken(resp.Tokens.AccessToken)

		logging.FromContext(ctx).Debug("session refreshed", "access_expires_at", resp.Tokens.AccessExpiresAt)
		return nil, nil
	})
	return err
}

type loginResponse struct {
	Tokens models.SessionTokens `json:"tokens"`
	User   models.User          `json:"user"`
}

// Login authenticates against POST /api/auth/login and returns a session
// whose token is installed on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("login: email and password are required")
	}

	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Tokens.AccessToken == "" {
		return nil, fmt.Errorf("login: response carried no access token")
	}

	return NewSession(c, resp.User, resp.Tokens), nil
}
