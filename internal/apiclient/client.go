// Package apiclient talks to the VidFriends admin API over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vidfriends/admin/internal/logging"
	"github.com/vidfriends/admin/internal/models"
)

// ErrUnauthorized matches responses rejected for missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError reports a non-2xx response from the API.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Client issues requests against the admin API.
type Client struct {
	baseURL *url.URL
	http    *http.Client

	mu        sync.RWMutex
	token     string
	refresher func(ctx context.Context, stale string) error
}

// New constructs a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// SetToken installs the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setRefresher(fn func(ctx context.Context, stale string) error) {
	c.mu.Lock()
	c.refresher = fn
	c.mu.Unlock()
}

func (c *Client) currentRefresher() func(ctx context.Context, stale string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refresher
}

// ListUsers handles GET /api/users/.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListAllVideos handles GET /api/videos/admin/all. The payload is returned
// undecoded because the endpoint answers with either a bare array or an
// object wrapping one.
func (c *Client) ListAllVideos(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/videos/admin/all", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// DeleteVideo handles DELETE /api/videos/{id}.
func (c *Client) DeleteVideo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/videos/"+url.PathEscape(id), nil, nil)
}

// SetVideoShared handles PATCH /api/videos/{id}/share.
func (c *Client) SetVideoShared(ctx context.Context, id string, shared bool) (models.Video, error) {
	var video models.Video
	body := map[string]bool{"isShared": shared}
	if err := c.do(ctx, http.MethodPatch, "/api/videos/"+url.PathEscape(id)+"/share", body, &video); err != nil {
		return models.Video{}, err
	}
	return video, nil
}

// DeleteUser handles DELETE /api/users/{id}.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil)
}

// SetUserRole handles PATCH /api/users/{id}/role.
func (c *Client) SetUserRole(ctx context.Context, id, role string) (models.User, error) {
	var user models.User
	body := map[string]string{"role": role}
	if err := c.do(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(id)+"/role", body, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// do sends an authenticated request. A 401 triggers one session refresh and
// one retry with the renewed token.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	token := c.bearer()
	err := c.roundTrip(ctx, method, path, body, token, out)
	if token == "" || !errors.Is(err, ErrUnauthorized) {
		return err
	}

	refresh := c.currentRefresher()
	if refresh == nil {
		return err
	}
	if rerr := refresh(ctx, token); rerr != nil {
		logging.FromContext(ctx).Warn("session refresh failed", slog.String("path", path), slog.Any("error", rerr))
		return err
	}
	return c.roundTrip(ctx, method, path, body, c.bearer(), out)
}

// send issues a single request with the current token and no refresh.
func (c *Client) send(ctx context.Context, method, path string, body any, out any) error {
	return c.roundTrip(ctx, method, path, body, c.bearer(), out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	logger := logging.FromContext(ctx)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logger.Debug("api request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}
