package goAuthClient

import (
	"context"
	"net/url"

	"go.uber.org/zap"
)

// Redirect tells a flow where to go once it completes. The zero value,
// DefaultRedirect, resolves the target from the page URL's "redirect" query
// parameter, then the server's redirectTo, then "/".
type Redirect struct {
	path     string
	disabled bool
}

var (
	// DefaultRedirect resolves the target automatically.
	DefaultRedirect = Redirect{}
	// NoRedirect suppresses navigation.
	NoRedirect = Redirect{disabled: true}
)

// RedirectPath pins the redirect target to path. An empty path behaves like
// DefaultRedirect.
func RedirectPath(path string) Redirect {
	return Redirect{path: path}
}

// Disabled reports whether r is NoRedirect.
func (r Redirect) Disabled() bool {
	return r.disabled
}

// Path returns the explicit target, if any.
func (r Redirect) Path() (string, bool) {
	if r.disabled || r.path == "" {
		return "", false
	}
	return r.path, true
}

// pageQuery returns the query of the current page, empty when the location
// has no URL.
func (c *Client) pageQuery() url.Values {
	u := c.location.URL()
	if u == nil {
		return url.Values{}
	}
	return u.Query()
}

// queryRedirect returns the "redirect" query parameter of the current page.
func (c *Client) queryRedirect() string {
	return c.pageQuery().Get("redirect")
}

// resolveRedirect picks the post-flow target. The second result is false
// when r suppresses navigation.
func (c *Client) resolveRedirect(r Redirect, fromServer string) (string, bool) {
	if r.disabled {
		return "", false
	}
	if p, ok := r.Path(); ok {
		return p, true
	}
	if q := c.queryRedirect(); q != "" {
		return q, true
	}
	if fromServer != "" {
		return fromServer, true
	}
	return "/", true
}

// navigate sends the page to target unless the page is already there.
func (c *Client) navigate(ctx context.Context, target string) error {
	if target == "" {
		return nil
	}
	if current := c.location.URL(); current != nil {
		if ref, err := url.Parse(target); err == nil {
			resolved := current.ResolveReference(ref)
			if withoutFragment(resolved) == withoutFragment(current) {
				c.log.Debug("redirect target is the current page", zap.String("target", target))
				return nil
			}
		}
	}
	return c.navigator.Navigate(ctx, target)
}

func withoutFragment(u *url.URL) string {
	v := *u
	v.Fragment, v.RawFragment = "", ""
	return v.String()
}
