package client

import (
	"context"
	"net/http"

	"github.com/mehmetcc/resirent/internal/token"
	"go.uber.org/zap"
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// refresh returns a pair to retry with. stale is the access token the failed
// call carried. If the session has moved on since, the current pair is
// returned without contacting the API.
func (c *Client) refresh(ctx context.Context, stale string) (token.Pair, error) {
	cur := c.sessions.Get()
	if cur.Pair == nil || cur.Pair.Refresh == "" {
		c.clear(ctx)
		return token.Pair{}, ErrNoRefreshToken
	}
	if cur.Pair.Access != stale {
		return *cur.Pair, nil
	}

	held := *cur.Pair
	// the exchange outlives a caller that gives up; others may share it
	flightCtx := context.WithoutCancel(ctx)
	ch := c.refreshes.DoChan(held.Refresh, func() (any, error) {
		// a flight for held may have finished between the read above and here
		now := c.sessions.Get()
		if now.Pair == nil {
			return token.Pair{}, ErrNoRefreshToken
		}
		if *now.Pair != held {
			return *now.Pair, nil
		}
		return c.exchange(flightCtx, held)
	})

	select {
	case <-ctx.Done():
		return token.Pair{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return token.Pair{}, res.Err
		}
		if res.Shared {
			c.logger.Debug("joined in-flight refresh")
		}
		return res.Val.(token.Pair), nil
	}
}

// exchange trades the refresh token for a new pair and stores it. Any
// failure ends the session.
func (c *Client) exchange(ctx context.Context, held token.Pair) (token.Pair, error) {
	req, err := NewJSONRequest(http.MethodPost, c.refreshPath, refreshRequest{Refresh: held.Refresh})
	if err != nil {
		return token.Pair{}, err
	}
	req.Credential = true

	resp, err := c.send(ctx, req, "")
	if err != nil {
		c.clear(ctx)
		return token.Pair{}, err
	}

	var next token.Pair
	if err := resp.decode(req, &next); err != nil {
		c.logger.Info("refresh rejected", zap.Error(err))
		c.clear(ctx)
		return token.Pair{}, err
	}
	if next.Access == "" {
		c.clear(ctx)
		return token.Pair{}, ErrBadTokenPair
	}
	if next.Refresh == "" {
		// server does not rotate refresh tokens
		next.Refresh = held.Refresh
	}

	if err := c.sessions.Set(ctx, next); err != nil {
		c.logger.Error("failed to store refreshed session", zap.Error(err))
		c.clear(ctx)
		return token.Pair{}, err
	}
	c.logger.Info("session refreshed")
	return next, nil
}
