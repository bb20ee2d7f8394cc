package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mehmetcc/resirent/internal/httpx"
	"github.com/mehmetcc/resirent/internal/session"
	"github.com/mehmetcc/resirent/internal/token"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRefreshPath = "login/refresh/"

	maxResponseBytes = 8 << 20
)

// Sessions is the part of session.Store the client needs.
type Sessions interface {
	Get() session.Session
	Set(ctx context.Context, pair token.Pair) error
	Clear(ctx context.Context) error
}

type Config struct {
	BaseURL     string
	RefreshPath string
	Timeout     time.Duration
	Meta        httpx.ClientMeta
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// Client calls the API with the current bearer token. A 401 on a call that
// has not been retried yet exchanges the refresh token once and re-issues
// the call. Concurrent refreshes of the same token share one exchange.
type Client struct {
	base        *url.URL
	refreshPath string
	http        *http.Client
	sessions    Sessions
	meta        httpx.ClientMeta
	logger      *zap.Logger
	refreshes   singleflight.Group
}

func New(cfg Config, sessions Sessions, logger *zap.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("client: base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: base url %q is not absolute", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		base:        base,
		refreshPath: cfg.RefreshPath,
		http:        &http.Client{Timeout: cfg.Timeout},
		sessions:    sessions,
		meta:        cfg.Meta,
		logger:      logger,
	}
	if c.refreshPath == "" {
		c.refreshPath = DefaultRefreshPath
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do sends req and decodes a 2xx JSON body into out when out is non-nil.
// Credential requests go out without a bearer.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	var used string
	if !req.Credential {
		used = c.sessions.Get().AccessToken()
	}
	resp, err := c.send(ctx, req, used)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized && !req.Credential {
		original := newAPIError(req, resp.status, resp.body)
		pair, err := c.refresh(ctx, used)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("client: %s %s: %w", req.Method, req.Path, ctxErr)
			}
			c.logger.Info("refresh failed, returning original response",
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Error(err),
			)
			return original
		}
		// retried exactly once, whatever it returns
		resp, err = c.send(ctx, req, pair.Access)
		if err != nil {
			return err
		}
	}

	return resp.decode(req, out)
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, NewRequest(http.MethodGet, path), out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, NewRequest(http.MethodDelete, path), nil)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	req, err := NewJSONRequest(http.MethodPost, path, in)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	req, err := NewJSONRequest(http.MethodPatch, path, in)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, out)
}

func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

type response struct {
	status int
	body   []byte
}

func (r *response) decode(req *Request, out any) error {
	if r.status < 200 || r.status > 299 {
		return newAPIError(req, r.status, r.body)
	}
	if out == nil || len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req *Request, access string) (*response, error) {
	target := c.base.ResolveReference(&url.URL{
		Path:     strings.TrimPrefix(req.Path, "/"),
		RawQuery: req.Query.Encode(),
	})

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", req.Method, req.Path, err)
	}
	hreq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		hreq.Header.Set("Content-Type", req.ContentType)
	}
	c.meta.Apply(hreq.Header)
	if access != "" {
		hreq.Header.Set("Authorization", "Bearer "+access)
	}

	start := time.Now()
	hresp, err := c.http.Do(hreq)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("client: %s %s: %w", req.Method, req.Path, err)
	}
	defer hresp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(hresp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: read body: %w", req.Method, req.Path, err)
	}

	c.logger.Debug("request done",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", hresp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &response{status: hresp.StatusCode, body: raw}, nil
}

// clear logs out after a failed refresh. A storage error is logged only;
// the in-memory session is already gone.
func (c *Client) clear(ctx context.Context) {
	if err := c.sessions.Clear(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error("failed to clear session", zap.Error(err))
	}
}
