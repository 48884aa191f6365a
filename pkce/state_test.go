package pkce

import (
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	state   *State
	storage *browser.MemoryStorage
	loc     *browser.StaticLocation
	nav     *browser.RecordingNavigator
	now     *time.Time
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T, rawURL string) *fixture {
	t.Helper()

	now := time.Unix(1_700_000_000, 0)
	f := &fixture{
		storage: browser.NewMemoryStorage(),
		loc:     browser.MustStaticLocation(rawURL),
		nav:     &browser.RecordingNavigator{},
		now:     &now,
	}
	core, logs := observer.New(zap.DebugLevel)
	f.logs = logs
	f.state = New(f.storage, f.loc, f.nav,
		WithClock(func() time.Time { return *f.now }),
		WithLogger(zap.New(core)),
	)
	return f
}

func TestSetupFromURLCachesChallenge(t *testing.T) {
	f := newFixture(t, "https://app.example.com/login?code_challenge=abc")
	ctx := context.Background()

	require.True(t, f.state.Setup(ctx))
	assert.Equal(t, "abc", f.state.CodeChallenge())
	assert.Equal(t, url.Values{"code_challenge": {"abc"}}, f.state.RequestQueryParams())

	cached, ok, _ := f.storage.GetItem(ctx, ChallengeKey)
	require.True(t, ok)
	assert.Equal(t, "abc", cached)
	expiry, ok, _ := f.storage.GetItem(ctx, ExpiresAtKey)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(f.now.Add(DefaultTTL).UnixMilli(), 10), expiry)
}

func TestSetupURLWinsOverCache(t *testing.T) {
	f := newFixture(t, "https://app.example.com/login?code_challenge=fromurl")
	ctx := context.Background()
	f.state.WriteToStorage(ctx, "cached")

	require.True(t, f.state.Setup(ctx))
	assert.Equal(t, "fromurl", f.state.CodeChallenge())
	c, _ := f.state.ReadFromStorage(ctx)
	assert.Equal(t, "fromurl", c)
}

func TestSetupFromCacheAfterReload(t *testing.T) {
	f := newFixture(t, "https://app.example.com/login")
	ctx := context.Background()
	f.state.WriteToStorage(ctx, "cached")

	*f.now = f.now.Add(4 * time.Minute)
	require.True(t, f.state.Setup(ctx))
	assert.Equal(t, "cached", f.state.CodeChallenge())
}

func TestChallengeExpiresAfterTTL(t *testing.T) {
	f := newFixture(t, "https://app.example.com/login")
	ctx := context.Background()
	f.state.WriteToStorage(ctx, "cached")

	*f.now = f.now.Add(5*time.Minute + time.Millisecond)
	_, ok := f.state.ReadFromStorage(ctx)
	assert.False(t, ok)

	assert.False(t, f.state.Setup(ctx))
	assert.Equal(t, "", f.state.CodeChallenge())
	assert.Empty(t, f.state.RequestQueryParams())
	assert.Zero(t, f.storage.Len(), "stale entries are cleared")
}

func TestSetupWithoutChallenge(t *testing.T) {
	f := newFixture(t, "https://app.example.com/login")

	assert.False(t, f.state.Setup(context.Background()))
	assert.False(t, f.state.UsingPkce())
}

func TestReadFromStorageRejectsCorruptExpiry(t *testing.T) {
	f := newFixture(t, "https://app.example.com/login")
	ctx := context.Background()
	require.NoError(t, f.storage.SetItem(ctx, ChallengeKey, "abc"))
	require.NoError(t, f.storage.SetItem(ctx, ExpiresAtKey, "soon"))

	_, ok := f.state.ReadFromStorage(ctx)
	assert.False(t, ok)
}

func TestHandleRequiredAppendsCodeAndNavigates(t *testing.T) {
	f := newFixture(t, "https://app.example.com/login?code_challenge=abc")
	ctx := context.Background()
	require.True(t, f.state.Setup(ctx))

	require.NoError(t, f.state.HandleRequired(ctx, "code-1", "myapp://callback?state=x"))

	target, ok := f.nav.Last()
	require.True(t, ok)
	u, err := url.Parse(target)
	require.NoError(t, err)
	assert.Equal(t, "myapp", u.Scheme)
	assert.Equal(t, "code-1", u.Query().Get(AuthorizationCodeParam))
	assert.Equal(t, "x", u.Query().Get("state"))

	_, cached := f.state.ReadFromStorage(ctx)
	assert.False(t, cached, "challenge is single use")
	assert.Zero(t, f.logs.FilterMessageSnippet("without a cached pkce challenge").Len())
}

func TestHandleRequiredWarnsWithoutChallenge(t *testing.T) {
	f := newFixture(t, "https://app.example.com/login")

	require.NoError(t, f.state.HandleRequired(context.Background(), "code-1", "https://native.example.com/cb"))

	assert.Len(t, f.nav.Targets(), 1, "proceeds anyway")
	assert.Equal(t, 1, f.logs.FilterMessageSnippet("without a cached pkce challenge").Len())
}

func TestHandleRequiredNoopOnEmptyInput(t *testing.T) {
	f := newFixture(t, "https://app.example.com/login")
	ctx := context.Background()

	require.NoError(t, f.state.HandleRequired(ctx, "", "https://x.example.com"))
	require.NoError(t, f.state.HandleRequired(ctx, "code", ""))
	assert.Empty(t, f.nav.Targets())
}

func TestGenerateChallenge(t *testing.T) {
	verifier, challenge := GenerateChallenge()

	assert.NotEmpty(t, verifier)
	assert.NotEqual(t, verifier, challenge)
	assert.True(t, VerifyChallenge(verifier, challenge))
	assert.False(t, VerifyChallenge(verifier, challenge+"x"))
	assert.False(t, VerifyChallenge("", challenge))
}
