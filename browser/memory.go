package browser

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"
)

type cookieKey struct {
	name   string
	domain string
	path   string
}

type storedCookie struct {
	cookie http.Cookie
	seq    uint64
}

// MemoryJar is an in-process [CookieJar]. Cookies are keyed by
// (name, domain, path) the way a browser keys them, so removal only succeeds
// with the exact attributes a cookie was written with.
type MemoryJar struct {
	mu      sync.Mutex
	cookies map[cookieKey]storedCookie
	seq     uint64
	now     func() time.Time
}

// NewMemoryJar returns an empty jar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{
		cookies: make(map[cookieKey]storedCookie),
		now:     time.Now,
	}
}

// Cookie returns the value of the most recently written live cookie named name.
func (j *MemoryJar) Cookie(name string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var (
		best  storedCookie
		found bool
	)
	now := j.now()
	for key, c := range j.cookies {
		if key.name != name {
			continue
		}
		if !c.cookie.Expires.IsZero() && !c.cookie.Expires.After(now) {
			delete(j.cookies, key)
			continue
		}
		if !found || c.seq > best.seq {
			best = c
			found = true
		}
	}
	if !found {
		return "", false
	}
	return best.cookie.Value, true
}

// SetCookie stores a copy of cookie. A negative MaxAge or an Expires in the
// past removes the matching cookie instead.
func (j *MemoryJar) SetCookie(cookie *http.Cookie) error {
	if cookie == nil || cookie.Name == "" {
		return errors.New("browser: cookie name required")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	key := cookieKey{name: cookie.Name, domain: cookie.Domain, path: cookie.Path}
	if cookie.MaxAge < 0 || (!cookie.Expires.IsZero() && !cookie.Expires.After(j.now())) {
		delete(j.cookies, key)
		return nil
	}
	j.seq++
	j.cookies[key] = storedCookie{cookie: *cookie, seq: j.seq}
	return nil
}

// RemoveCookie deletes the cookie stored under exactly (name, domain, path).
func (j *MemoryJar) RemoveCookie(name, domain, path string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.cookies, cookieKey{name: name, domain: domain, path: path})
	return nil
}

// Lookup returns the cookie stored under exactly (name, domain, path).
func (j *MemoryJar) Lookup(name, domain, path string) (*http.Cookie, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	c, ok := j.cookies[cookieKey{name: name, domain: domain, path: path}]
	if !ok {
		return nil, false
	}
	cp := c.cookie
	return &cp, true
}

// Cookies returns copies of every stored cookie ordered by write time.
func (j *MemoryJar) Cookies() []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries := make([]storedCookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		entries = append(entries, c)
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].seq < entries[b].seq })

	out := make([]*http.Cookie, 0, len(entries))
	for i := range entries {
		cp := entries[i].cookie
		out = append(out, &cp)
	}
	return out
}

// StaticLocation is a settable [Location].
type StaticLocation struct {
	mu  sync.RWMutex
	url *url.URL
}

// NewStaticLocation parses raw as the current location.
func NewStaticLocation(raw string) (*StaticLocation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &StaticLocation{url: u}, nil
}

// MustStaticLocation is like [NewStaticLocation] but panics on a bad URL.
func MustStaticLocation(raw string) *StaticLocation {
	l, err := NewStaticLocation(raw)
	if err != nil {
		panic(err)
	}
	return l
}

// URL returns a copy of the current location.
func (l *StaticLocation) URL() *url.URL {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.url == nil {
		return &url.URL{}
	}
	cp := *l.url
	return &cp
}

// Set replaces the current location.
func (l *StaticLocation) Set(u *url.URL) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *u
	l.url = &cp
}

// RecordingNavigator records navigation targets instead of performing them.
// When Location is set, navigating also moves it, resolving relative targets.
type RecordingNavigator struct {
	Location *StaticLocation

	mu      sync.Mutex
	targets []string
}

// Navigate records target.
func (n *RecordingNavigator) Navigate(_ context.Context, target string) error {
	n.mu.Lock()
	n.targets = append(n.targets, target)
	n.mu.Unlock()

	if n.Location != nil {
		if ref, err := url.Parse(target); err == nil {
			n.Location.Set(n.Location.URL().ResolveReference(ref))
		}
	}
	return nil
}

// Targets returns every recorded target in order.
func (n *RecordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

// Last returns the most recent target.
func (n *RecordingNavigator) Last() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.targets) == 0 {
		return "", false
	}
	return n.targets[len(n.targets)-1], true
}
