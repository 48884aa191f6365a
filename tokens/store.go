package tokens

import (
	"sync"
	"time"

	"github.com/MrEthical07/goAuthClient/browser"
	"go.uber.org/zap"
)

// Store holds the tokens of one tenant session. Reads come from memory and
// fall back to the cookie jar for tokens never set in this session; writes
// and deletes always go to both.
type Store struct {
	mu       sync.Mutex
	jar      browser.CookieJar
	location browser.Location
	tenantID string
	live     func() bool
	now      func() time.Time
	log      *zap.Logger

	values  [kindCount]*string
	options [kindCount]*CookieOptions
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger used for swallowed jar failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLiveMode sets the function deciding the default Secure attribute.
func WithLiveMode(fn func() bool) Option {
	return func(s *Store) {
		if fn != nil {
			s.live = fn
		}
	}
}

// WithClock overrides time.Now for cookie expiry computation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns a store for tenantID writing to jar. location supplies the
// hostname and path used when deleting cookies.
func NewStore(jar browser.CookieJar, location browser.Location, tenantID string, opts ...Option) *Store {
	s := &Store{
		jar:      jar,
		location: location,
		tenantID: tenantID,
		live:     func() bool { return true },
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TenantID returns the tenant the cookie names are namespaced with.
func (s *Store) TenantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenantID
}

// Name returns the cookie name of kind, e.g. "access.<tenantId>".
func (s *Store) Name(kind Kind) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name(kind)
}

func (s *Store) name(kind Kind) string {
	return kind.String() + "." + s.tenantID
}

// Lookup returns the token of kind and whether one is present.
func (s *Store) Lookup(kind Kind) (string, bool) {
	if !kind.valid() {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v := s.values[kind]; v != nil {
		return *v, *v != ""
	}
	if s.jar == nil {
		return "", false
	}
	return s.jar.Cookie(s.name(kind))
}

// Get returns the token of kind or "".
func (s *Store) Get(kind Kind) string {
	v, _ := s.Lookup(kind)
	return v
}

// Set stores value and writes its cookie with the options recorded at the
// last issuance of kind, or the default policy.
func (s *Store) Set(kind Kind, value string) {
	if !kind.valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(kind, value)
}

// SetWithOptions records opts for kind and stores value.
func (s *Store) SetWithOptions(kind Kind, value string, opts *CookieOptions) {
	if !kind.valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[kind] = cloneOptions(opts)
	s.set(kind, value)
}

func (s *Store) set(kind Kind, value string) {
	v := value
	s.values[kind] = &v
	if s.jar == nil {
		return
	}

	cookie := cookieFor(s.name(kind), kind, value, s.options[kind], s.live(), s.now())
	if err := s.jar.SetCookie(cookie); err != nil {
		s.log.Debug("cookie write failed", zap.String("cookie", cookie.Name), zap.Error(err))
	}
}

// Delete forgets the token of kind and removes its cookie under every
// plausible domain and path.
func (s *Store) Delete(kind Kind) {
	if !kind.valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.delete(kind)
}

func (s *Store) delete(kind Kind) {
	s.values[kind] = nil
	if s.jar == nil {
		return
	}

	name := s.name(kind)
	for _, t := range s.pageTargets() {
		if err := s.jar.RemoveCookie(name, t.Domain, t.Path); err != nil {
			s.log.Debug("cookie removal failed",
				zap.String("cookie", name),
				zap.String("domain", t.Domain),
				zap.String("path", t.Path),
				zap.Error(err),
			)
		}
	}
}

func (s *Store) pageTargets() []CookieTarget {
	if s.location == nil {
		return RemovalTargets(nil)
	}
	return RemovalTargets(s.location.URL())
}

// SetIssued persists every token present in issued with its cookie options.
func (s *Store) SetIssued(issued *Issued) {
	if issued == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, kind := range Kinds {
		iss := issued.Get(kind)
		if iss == nil {
			continue
		}
		s.options[kind] = cloneOptions(iss.CookieOptions)
		s.set(kind, iss.Value)
	}
}

// Clear deletes all three tokens.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, kind := range Kinds {
		s.delete(kind)
	}
}

// Reset drops in-memory values and recorded options and renames the store
// for tenantID. Cookies of the previous tenant are left untouched.
func (s *Store) Reset(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tenantID = tenantID
	s.values = [kindCount]*string{}
	s.options = [kindCount]*CookieOptions{}
}

// AccessToken returns the access token or "".
func (s *Store) AccessToken() string { return s.Get(Access) }

// IDToken returns the ID token or "".
func (s *Store) IDToken() string { return s.Get(ID) }

// RefreshToken returns the refresh token or "".
func (s *Store) RefreshToken() string { return s.Get(Refresh) }

// SetAccessToken stores the access token.
func (s *Store) SetAccessToken(v string) { s.Set(Access, v) }

// SetIDToken stores the ID token.
func (s *Store) SetIDToken(v string) { s.Set(ID, v) }

// SetRefreshToken stores the refresh token.
func (s *Store) SetRefreshToken(v string) { s.Set(Refresh, v) }

// DeleteAccessToken removes the access token.
func (s *Store) DeleteAccessToken() { s.Delete(Access) }

// DeleteIDToken removes the ID token.
func (s *Store) DeleteIDToken() { s.Delete(ID) }

// DeleteRefreshToken removes the refresh token.
func (s *Store) DeleteRefreshToken() { s.Delete(Refresh) }

// AccessTokenName returns "access.<tenantId>".
func (s *Store) AccessTokenName() string { return s.Name(Access) }

// IDTokenName returns "id.<tenantId>".
func (s *Store) IDTokenName() string { return s.Name(ID) }

// RefreshTokenName returns "refresh.<tenantId>".
func (s *Store) RefreshTokenName() string { return s.Name(Refresh) }

func cloneOptions(o *CookieOptions) *CookieOptions {
	if o == nil {
		return nil
	}
	cp := *o
	if o.Secure != nil {
		b := *o.Secure
		cp.Secure = &b
	}
	return &cp
}
