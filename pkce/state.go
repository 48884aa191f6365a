// Package pkce decides whether the current authentication flow is a PKCE flow
// started by a native or mobile caller and carries its code challenge.
//
// The challenge is read from the page URL (code_challenge) or, after a reload
// or an SSO round trip, from a short-lived local storage entry. An empty
// challenge means the flow is not using PKCE.
package pkce

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/MrEthical07/goAuthClient/browser"
	"go.uber.org/zap"
)

const (
	// ChallengeKey is the storage key of the cached challenge.
	ChallengeKey = "uf_pkce_code_challenge"
	// ExpiresAtKey is the storage key of the cache expiry, in epoch millis.
	ExpiresAtKey = "uf_pkce_code_challenge_expiresAt"
	// QueryParam carries the challenge on page URLs and API requests.
	QueryParam = "code_challenge"
	// AuthorizationCodeParam carries the authorization code back to the caller.
	AuthorizationCodeParam = "authorization_code"
	// DefaultTTL bounds how long a cached challenge stays usable.
	DefaultTTL = 5 * time.Minute
)

// State is the PKCE state of one session context.
type State struct {
	mu        sync.Mutex
	storage   browser.Storage
	location  browser.Location
	navigator browser.Navigator
	ttl       time.Duration
	now       func() time.Time
	log       *zap.Logger

	challenge string
}

// Option configures a [State].
type Option func(*State)

// WithTTL overrides [DefaultTTL].
func WithTTL(ttl time.Duration) Option {
	return func(s *State) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a state with no active challenge.
func New(storage browser.Storage, location browser.Location, navigator browser.Navigator, opts ...Option) *State {
	s := &State{
		storage:   storage,
		location:  location,
		navigator: navigator,
		ttl:       DefaultTTL,
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Setup activates the challenge found in the page URL, re-caching it, or a
// cached one that has not expired. Otherwise the cache is cleared and Setup
// reports false.
func (s *State) Setup(ctx context.Context) bool {
	if c := s.challengeFromURL(); c != "" {
		s.setChallenge(c)
		s.WriteToStorage(ctx, c)
		return true
	}
	if c, ok := s.ReadFromStorage(ctx); ok {
		s.setChallenge(c)
		return true
	}
	s.setChallenge("")
	s.ClearStorage(ctx)
	return false
}

func (s *State) challengeFromURL() string {
	if s.location == nil {
		return ""
	}
	u := s.location.URL()
	if u == nil {
		return ""
	}
	return u.Query().Get(QueryParam)
}

func (s *State) setChallenge(c string) {
	s.mu.Lock()
	s.challenge = c
	s.mu.Unlock()
}

// CodeChallenge returns the active challenge, "" when not using PKCE.
func (s *State) CodeChallenge() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.challenge
}

// UsingPkce reports whether a challenge is active.
func (s *State) UsingPkce() bool {
	return s.CodeChallenge() != ""
}

// RequestQueryParams returns the query parameters every first-factor and MFA
// request carries: code_challenge when active, nothing otherwise.
func (s *State) RequestQueryParams() url.Values {
	q := url.Values{}
	if c := s.CodeChallenge(); c != "" {
		q.Set(QueryParam, c)
	}
	return q
}

// ReadFromStorage returns the cached challenge if it has not expired.
func (s *State) ReadFromStorage(ctx context.Context) (string, bool) {
	if s.storage == nil {
		return "", false
	}

	challenge, ok, err := s.storage.GetItem(ctx, ChallengeKey)
	if err != nil {
		s.log.Debug("pkce cache read failed", zap.Error(err))
		return "", false
	}
	if !ok || challenge == "" {
		return "", false
	}

	rawExpiry, ok, err := s.storage.GetItem(ctx, ExpiresAtKey)
	if err != nil {
		s.log.Debug("pkce cache read failed", zap.Error(err))
		return "", false
	}
	if !ok {
		return "", false
	}
	expiresAt, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		return "", false
	}
	if s.now().UnixMilli() >= expiresAt {
		return "", false
	}
	return challenge, true
}

// WriteToStorage caches challenge for the configured TTL.
func (s *State) WriteToStorage(ctx context.Context, challenge string) {
	if s.storage == nil {
		return
	}

	expiresAt := s.now().Add(s.ttl).UnixMilli()
	if err := s.storage.SetItem(ctx, ChallengeKey, challenge); err != nil {
		s.log.Debug("pkce cache write failed", zap.Error(err))
		return
	}
	if err := s.storage.SetItem(ctx, ExpiresAtKey, strconv.FormatInt(expiresAt, 10)); err != nil {
		s.log.Debug("pkce cache write failed", zap.Error(err))
	}
}

// ClearStorage removes the cached challenge.
func (s *State) ClearStorage(ctx context.Context) {
	if s.storage == nil {
		return
	}
	for _, key := range []string{ChallengeKey, ExpiresAtKey} {
		if err := s.storage.RemoveItem(ctx, key); err != nil {
			s.log.Debug("pkce cache clear failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Reset forgets the active challenge without touching the cache.
func (s *State) Reset() {
	s.setChallenge("")
}

// HandleRequired sends the caller to target with the authorization code
// appended. The challenge is single use: the cache and the active value are
// cleared before navigating. Empty inputs are a no-op.
func (s *State) HandleRequired(ctx context.Context, authorizationCode, target string) error {
	if authorizationCode == "" || target == "" {
		return nil
	}
	if _, ok := s.ReadFromStorage(ctx); !ok {
		s.log.Warn("authorization code received without a cached pkce challenge")
	}

	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("pkce: invalid redirect target %q: %w", target, err)
	}
	q := u.Query()
	q.Set(AuthorizationCodeParam, authorizationCode)
	u.RawQuery = q.Encode()

	s.ClearStorage(ctx)
	s.setChallenge("")

	if s.navigator == nil {
		return nil
	}
	return s.navigator.Navigate(ctx, u.String())
}
