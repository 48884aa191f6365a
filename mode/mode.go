// Package mode decides whether the SDK runs against a tenant's test or live
// environment. The heuristic here is a pure function of the page URL; the
// authoritative answer comes from the server and is applied by the client.
package mode

import (
	"net/url"
	"strings"
)

// Mode is the tenant operating mode.
type Mode string

const (
	// Test marks development hosts; cookies are written without Secure.
	Test Mode = "test"
	// Live marks production hosts.
	Live Mode = "live"
)

var testHosts = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
	"0.0.0.0":   {},
	"::1":       {},
}

var testSuffixes = []string{".localhost", ".local", ".test", ".internal"}

// Parse maps a server supplied string to a Mode. Anything other than "test"
// is Live.
func Parse(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(Test)) {
		return Test
	}
	return Live
}

// IsTestHostname reports whether hostname looks like a development host.
func IsTestHostname(hostname string) bool {
	h := strings.ToLower(strings.Trim(hostname, "[]"))
	if h == "" {
		return false
	}
	if _, ok := testHosts[h]; ok {
		return true
	}
	for _, suffix := range testSuffixes {
		if strings.HasSuffix(h, suffix) {
			return true
		}
	}
	return false
}

// FromURL infers the mode from the page URL: plain http or a development
// hostname means Test.
func FromURL(u *url.URL) Mode {
	if u == nil {
		return Live
	}
	if strings.EqualFold(u.Scheme, "http") {
		return Test
	}
	if IsTestHostname(u.Hostname()) {
		return Test
	}
	return Live
}

// IsLive reports m == Live.
func (m Mode) IsLive() bool { return m == Live }

func (m Mode) String() string { return string(m) }
