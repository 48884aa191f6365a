package browser

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJarRemoveRequiresExactMatch(t *testing.T) {
	jar := NewMemoryJar()
	require.NoError(t, jar.SetCookie(&http.Cookie{Name: "access.t1", Value: "v", Domain: ".example.com", Path: "/"}))

	require.NoError(t, jar.RemoveCookie("access.t1", "example.com", "/"))
	_, ok := jar.Cookie("access.t1")
	assert.True(t, ok, "removal with a different domain must not match")

	require.NoError(t, jar.RemoveCookie("access.t1", ".example.com", "/"))
	_, ok = jar.Cookie("access.t1")
	assert.False(t, ok)
}

func TestMemoryJarReturnsMostRecentWrite(t *testing.T) {
	jar := NewMemoryJar()
	require.NoError(t, jar.SetCookie(&http.Cookie{Name: "id.t1", Value: "old", Path: "/"}))
	require.NoError(t, jar.SetCookie(&http.Cookie{Name: "id.t1", Value: "new", Domain: "app.example.com", Path: "/"}))

	v, ok := jar.Cookie("id.t1")
	require.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Len(t, jar.Cookies(), 2)
}

func TestMemoryJarExpiredCookiesAreAbsent(t *testing.T) {
	jar := NewMemoryJar()
	now := time.Unix(1_700_000_000, 0)
	jar.now = func() time.Time { return now }

	require.NoError(t, jar.SetCookie(&http.Cookie{Name: "a", Value: "v", Expires: now.Add(time.Minute)}))
	now = now.Add(2 * time.Minute)

	_, ok := jar.Cookie("a")
	assert.False(t, ok)
}

func TestMemoryJarNegativeMaxAgeDeletes(t *testing.T) {
	jar := NewMemoryJar()
	require.NoError(t, jar.SetCookie(&http.Cookie{Name: "a", Value: "v", Path: "/"}))
	require.NoError(t, jar.SetCookie(&http.Cookie{Name: "a", Path: "/", MaxAge: -1}))

	_, ok := jar.Lookup("a", "", "/")
	assert.False(t, ok)
}

func TestRecordingNavigatorMovesLocation(t *testing.T) {
	loc := MustStaticLocation("https://app.example.com/login?redirect=/x")
	nav := &RecordingNavigator{Location: loc}

	require.NoError(t, nav.Navigate(context.Background(), "/dashboard"))

	last, ok := nav.Last()
	require.True(t, ok)
	assert.Equal(t, "/dashboard", last)
	assert.Equal(t, "https://app.example.com/dashboard", loc.URL().String())
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	require.NoError(t, s.SetItem(ctx, "k", "v"))
	v, ok, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.RemoveItem(ctx, "k"))
	_, ok, err = s.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestRedisStorageRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	s := NewRedisStorage(rdb, "")

	require.NoError(t, s.SetItem(ctx, "uf_pkce_code_challenge", "abc"))
	assert.True(t, mr.Exists("uf:uf_pkce_code_challenge"))

	v, ok, err := s.GetItem(ctx, "uf_pkce_code_challenge")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.RemoveItem(ctx, "uf_pkce_code_challenge"))
	_, ok, err = s.GetItem(ctx, "uf_pkce_code_challenge")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStorageBackendFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	_, _, err = NewRedisStorage(rdb, "p").GetItem(context.Background(), "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageBackend)
}
