package goAuthClient

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// LogoutOptions are the arguments of Logout.
type LogoutOptions struct {
	Redirect Redirect
}

type logoutResponse struct {
	Message    string `json:"message"`
	RedirectTo string `json:"redirectTo"`
}

// Logout ends the session on the server and always clears the stored
// tokens, whether or not the server call succeeds. On success the page is
// sent to the explicit redirect or the server's redirectTo.
func (c *Client) Logout(ctx context.Context, opts LogoutOptions) error {
	c.metrics.Inc(MetricLogout)

	access := c.tokens.AccessToken()
	if access == "" {
		c.tokens.Clear()
		return nil
	}

	var resp logoutResponse
	err := c.api.Get(ctx, "auth/logout", bearer(access), &resp)
	c.tokens.Clear()
	if err != nil {
		c.log.Debug("logout request failed", zap.Error(err))
		return err
	}

	if opts.Redirect.Disabled() {
		return nil
	}
	target := resp.RedirectTo
	if p, ok := opts.Redirect.Path(); ok {
		target = p
	}
	return c.navigate(ctx, target)
}

// Refresh exchanges the stored refresh token for new tokens and stores them.
func (c *Client) Refresh(ctx context.Context) (*AuthResponse, error) {
	refresh := c.tokens.RefreshToken()
	if refresh == "" {
		c.metrics.Inc(MetricRefreshFailure)
		return nil, ErrNoRefreshToken
	}

	var data AuthResponse
	if err := c.api.Post(ctx, "auth/refresh", nil, bearer(refresh), &data); err != nil {
		c.metrics.Inc(MetricRefreshFailure)
		return nil, err
	}
	c.metrics.Inc(MetricRefreshSuccess)
	if data.Tokens != nil {
		c.tokens.SetIssued(data.Tokens)
	}
	return &data, nil
}

// RedirectIfLoggedIn checks the stored access token against the API. A
// rejected or missing token clears the stored tokens and nothing else
// happens. A valid one sends the page to the explicit redirect, the page's
// "redirect" query parameter, or "/". Transport failures are returned and
// leave the tokens in place.
func (c *Client) RedirectIfLoggedIn(ctx context.Context, redirect Redirect) error {
	access := c.tokens.AccessToken()
	if access == "" {
		c.tokens.Clear()
		return nil
	}

	if err := c.api.Get(ctx, "self", bearer(access), nil); err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return err
		}
		c.log.Debug("stored access token rejected", zap.Int("status", apiErr.Status))
		c.tokens.Clear()
		return nil
	}

	target, ok := c.resolveRedirect(redirect, "")
	if !ok {
		return nil
	}
	return c.navigate(ctx, target)
}
