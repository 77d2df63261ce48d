// Package client is a typed Go client for the leave API. Every request
// carries the bearer token held by the configured TokenStore.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go-leave/internal/auth"
	"go-leave/internal/domain"
	"go-leave/internal/leave"
	"go-leave/internal/middleware"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// TokenStore holds the access token between calls.
type TokenStore interface {
	Token() string
	SetToken(token string)
}

type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// bearerTransport sets the Authorization header from the store on every
// outgoing request.
type bearerTransport struct {
	store TokenStore
	next  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.store.Token()
	if tok == "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+tok)
	return t.next.RoundTrip(r)
}

type Client struct {
	baseURL string
	store   TokenStore
	http    *http.Client
	logger  *zap.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTransport replaces the underlying round tripper. The bearer
// transport still wraps it.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport.(*bearerTransport).next = rt
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("leave.client")
		}
	}
}

func New(baseURL string, store TokenStore, opts ...Option) *Client {
	if store == nil {
		store = &MemoryTokenStore{}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: &bearerTransport{store: store, next: http.DefaultTransport},
		},
		logger: zap.L().Named("leave.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int                 `json:"-"`
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any, header http.Header) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.Status = resp.StatusCode
		c.logger.Debug("api call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
		)
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) (user.UserResponse, error) {
	var out user.UserResponse
	err := c.do(ctx, http.MethodPost, "/api/register", req, &out, nil)
	return out, err
}

// Login stores the returned access token for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (auth.LoginResponse, error) {
	var out auth.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", auth.LoginRequest{Email: email, Password: password}, &out, nil)
	if err != nil {
		return auth.LoginResponse{}, err
	}
	c.store.SetToken(out.AccessToken)
	return out, nil
}

// Logout revokes the current token server-side and forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil); err != nil {
		return err
	}
	c.store.SetToken("")
	return nil
}

func (c *Client) Me(ctx context.Context) (user.UserResponse, error) {
	var out user.UserResponse
	err := c.do(ctx, http.MethodGet, "/api/user", nil, &out, nil)
	return out, err
}

func (c *Client) Permissions(ctx context.Context) (domain.RolePermissionsResponse, error) {
	var out domain.RolePermissionsResponse
	err := c.do(ctx, http.MethodGet, "/api/permissions", nil, &out, nil)
	return out, err
}

func (c *Client) ListLeaves(ctx context.Context) ([]leave.LeaveResponse, error) {
	var out []leave.LeaveResponse
	err := c.do(ctx, http.MethodGet, "/api/leaves", nil, &out, nil)
	return out, err
}

func (c *Client) ListMyLeaves(ctx context.Context) ([]leave.LeaveResponse, error) {
	var out []leave.LeaveResponse
	err := c.do(ctx, http.MethodGet, "/api/leaves-current-user", nil, &out, nil)
	return out, err
}

// CreateLeave sends a fresh idempotency key so a retried call is not
// stored twice.
func (c *Client) CreateLeave(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	var out leave.LeaveResponse
	h := http.Header{}
	h.Set(middleware.HeaderIdempotencyKey, uuid.NewString())
	err := c.do(ctx, http.MethodPost, "/api/leaves", req, &out, h)
	return out, err
}

func (c *Client) UpdateLeave(ctx context.Context, id string, req leave.UpdateLeaveRequest) (leave.LeaveResponse, error) {
	var out leave.LeaveResponse
	err := c.do(ctx, http.MethodPut, "/api/leaves/"+id+"/update", req, &out, nil)
	return out, err
}

func (c *Client) UpdateLeaveStatus(ctx context.Context, id, status string) (leave.LeaveResponse, error) {
	var out leave.LeaveResponse
	body := leave.UpdateLeaveStatusRequest{Status: status}
	err := c.do(ctx, http.MethodPut, "/api/leaves/"+id+"/updateStatus", body, &out, nil)
	return out, err
}

func (c *Client) DeleteLeave(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/leaves/"+id+"/delete", nil, nil, nil)
}

func (c *Client) Stats(ctx context.Context) (leave.StatsResponse, error) {
	var out leave.StatsResponse
	err := c.do(ctx, http.MethodGet, "/api/leave-stats", nil, &out, nil)
	return out, err
}
