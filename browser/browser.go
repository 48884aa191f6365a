package browser

import (
	"context"
	"net/http"
	"net/url"
)

// CookieJar reads and writes cookies visible to the current document.
//
// RemoveCookie must only remove a cookie whose domain and path match exactly;
// an empty domain or path addresses the cookie set without that attribute.
type CookieJar interface {
	Cookie(name string) (string, bool)
	SetCookie(cookie *http.Cookie) error
	RemoveCookie(name, domain, path string) error
}

// Storage is a string key/value store with local-storage semantics: values
// never expire on their own.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Location exposes the URL of the current page.
type Location interface {
	URL() *url.URL
}

// Navigator moves the current page to target, which is either an absolute URL
// or a path relative to the current location.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// LocationFunc adapts a plain function to [Location].
type LocationFunc func() *url.URL

// URL returns f().
func (f LocationFunc) URL() *url.URL { return f() }

// NavigatorFunc adapts a plain function to [Navigator].
type NavigatorFunc func(ctx context.Context, target string) error

// Navigate calls f(ctx, target).
func (f NavigatorFunc) Navigate(ctx context.Context, target string) error { return f(ctx, target) }
