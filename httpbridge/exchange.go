package httpbridge

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
)

// ErrCommitted is returned by Navigate once the redirect has been written.
var ErrCommitted = errors.New("httpbridge: response already committed")

type cookieKey struct {
	name   string
	domain string
	path   string
}

// Exchange implements browser.CookieJar, browser.Location and
// browser.Navigator over a single request.
type Exchange struct {
	w http.ResponseWriter
	r *http.Request

	trustForwarded bool
	immediate      bool
	status         int

	mu        sync.Mutex
	values    map[string]string
	removed   map[string]bool
	removals  map[cookieKey]struct{}
	target    string
	committed bool
}

// Option configures an Exchange.
type Option func(*Exchange)

// WithTrustForwarded makes Location honor X-Forwarded-Proto and
// X-Forwarded-Host. Enable only behind a proxy that sets them.
func WithTrustForwarded() Option {
	return func(e *Exchange) { e.trustForwarded = true }
}

// WithImmediateRedirect writes the redirect as soon as Navigate is called
// instead of waiting for Commit.
func WithImmediateRedirect() Option {
	return func(e *Exchange) { e.immediate = true }
}

// WithRedirectStatus sets the status used for redirects. The default is
// 303 See Other.
func WithRedirectStatus(code int) Option {
	return func(e *Exchange) { e.status = code }
}

// NewExchange wraps w and r.
func NewExchange(w http.ResponseWriter, r *http.Request, opts ...Option) *Exchange {
	e := &Exchange{
		w:        w,
		r:        r,
		status:   http.StatusSeeOther,
		values:   make(map[string]string),
		removed:  make(map[string]bool),
		removals: make(map[cookieKey]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cookie returns the value written during this exchange, or the request
// cookie when nothing was written.
func (e *Exchange) Cookie(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.values[name]; ok {
		return v, true
	}
	if e.removed[name] {
		return "", false
	}
	c, err := e.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

// SetCookie appends a Set-Cookie header. Cookies set after the redirect was
// committed are dropped.
func (e *Exchange) SetCookie(cookie *http.Cookie) error {
	if cookie == nil || cookie.Name == "" {
		return errors.New("httpbridge: cookie name required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.committed {
		return ErrCommitted
	}
	if cookie.MaxAge < 0 {
		delete(e.values, cookie.Name)
		e.removed[cookie.Name] = true
	} else {
		e.values[cookie.Name] = cookie.Value
		delete(e.removed, cookie.Name)
	}
	http.SetCookie(e.w, cookie)
	return nil
}

// RemoveCookie writes an expiring Set-Cookie for (name, domain, path). It is
// a no-op when the cookie was neither sent with the request nor written
// during the exchange.
func (e *Exchange) RemoveCookie(name, domain, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, written := e.values[name]
	if !written && !e.removed[name] {
		if _, err := e.r.Cookie(name); err != nil {
			return nil
		}
	}
	key := cookieKey{name: name, domain: domain, path: path}
	if _, dup := e.removals[key]; dup {
		return nil
	}
	e.removals[key] = struct{}{}
	delete(e.values, name)
	e.removed[name] = true

	if e.committed {
		return ErrCommitted
	}
	http.SetCookie(e.w, &http.Cookie{
		Name:   name,
		Value:  "",
		Domain: domain,
		Path:   path,
		MaxAge: -1,
	})
	return nil
}

// URL reconstructs the absolute URL of the request.
func (e *Exchange) URL() *url.URL {
	u := *e.r.URL
	u.Scheme = "http"
	if e.r.TLS != nil {
		u.Scheme = "https"
	}
	u.Host = e.r.Host
	if e.trustForwarded {
		if p := e.r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
			u.Scheme = p
		}
		if h := e.r.Header.Get("X-Forwarded-Host"); h != "" {
			u.Host = h
		}
	}
	return &u
}

// Navigate records target as the redirect for this response.
func (e *Exchange) Navigate(_ context.Context, target string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.committed {
		return ErrCommitted
	}
	e.target = target
	if e.immediate {
		e.commit()
	}
	return nil
}

// Target returns the recorded redirect target.
func (e *Exchange) Target() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target, e.target != ""
}

// Commit writes the recorded redirect and reports whether one was written.
// Handlers that write their own response call it last and return early when
// it reports true.
func (e *Exchange) Commit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.committed {
		return true
	}
	if e.target == "" {
		return false
	}
	e.commit()
	return true
}

func (e *Exchange) commit() {
	e.committed = true
	http.Redirect(e.w, e.r, e.target, e.status)
}
