package goAuthClient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/goAuthClient/browser"
)

func newBenchmarkClient(b *testing.B, baseURL string, httpClient *http.Client) *Client {
	b.Helper()
	builder := New().
		WithConfig(Config{TenantID: "demo1234", BaseURL: baseURL}).
		WithLocation(browser.MustStaticLocation("https://app.example.com/login"))
	if httpClient != nil {
		builder.WithHTTPClient(httpClient)
	}
	c, err := builder.Build()
	if err != nil {
		b.Fatalf("build failed: %v", err)
	}
	return c
}

func BenchmarkHandleLoginResponseTokens(b *testing.B) {
	c := newBenchmarkClient(b, "", nil)

	var resp AuthResponse
	if err := json.Unmarshal([]byte(tokensBody), &resp); err != nil {
		b.Fatalf("decode failed: %v", err)
	}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.HandleLoginResponse(ctx, &resp, NoRedirect, Hooks{}); err != nil {
			b.Fatalf("handle failed: %v", err)
		}
	}
}

func BenchmarkDecodeAuthResponse(b *testing.B) {
	raw := []byte(mfaBody)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var resp AuthResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			b.Fatalf("decode failed: %v", err)
		}
	}
}

func BenchmarkLoginPasswordRoundTrip(b *testing.B) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, tokensBody)
	}))
	defer srv.Close()

	c := newBenchmarkClient(b, srv.URL+"/v0/", srv.Client())
	ctx := context.Background()
	opts := LoginOptions{
		Method:          MethodPassword,
		EmailOrUsername: "jane@example.com",
		Password:        "correct-password-123",
		Redirect:        NoRedirect,
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Login(ctx, opts); err != nil {
			b.Fatalf("login failed: %v", err)
		}
	}
}
