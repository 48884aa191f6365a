package tokens

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CookieTarget is one (domain, path) pair a cookie may have been written under.
// Empty fields mean the attribute was not set.
type CookieTarget struct {
	Domain string
	Path   string
}

// RemovalTargets lists every (domain, path) combination a token cookie could
// have been written under for the page at u: no domain, the hostname, the
// dotted hostname, the primary two-label domain and its dotted form, crossed
// with no path, the current path and "/".
func RemovalTargets(u *url.URL) []CookieTarget {
	domains := []string{""}
	paths := []string{""}

	var pagePath string
	if u != nil {
		pagePath = u.EscapedPath()
		if host := strings.ToLower(u.Hostname()); host != "" {
			domains = append(domains, host, "."+host)
			if labels := strings.Split(host, "."); len(labels) >= 2 {
				primary := strings.Join(labels[len(labels)-2:], ".")
				domains = append(domains, primary, "."+primary)
			}
		}
	}
	if pagePath != "" {
		paths = append(paths, pagePath)
	}
	paths = append(paths, "/")

	seen := make(map[CookieTarget]struct{}, len(domains)*len(paths))
	out := make([]CookieTarget, 0, len(domains)*len(paths))
	for _, d := range domains {
		for _, p := range paths {
			t := CookieTarget{Domain: d, Path: p}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// cookieFor applies the per-kind policy to build the cookie written for value.
func cookieFor(name string, kind Kind, value string, opts *CookieOptions, live bool, now time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Secure:   live,
		SameSite: http.SameSiteLaxMode,
	}
	if opts != nil {
		if opts.Secure != nil {
			c.Secure = *opts.Secure
		}
		if ss := parseSameSite(opts.SameSite); ss != 0 {
			c.SameSite = ss
		}
		if opts.Path != "" {
			c.Path = opts.Path
		}
		c.Domain = opts.Domain
		if opts.Expires > 0 {
			c.Expires = now.Add(time.Duration(opts.Expires * float64(24*time.Hour)))
		}
	}
	if kind == Refresh {
		c.SameSite = http.SameSiteStrictMode
	}
	if c.SameSite == http.SameSiteNoneMode {
		c.Secure = true
	}
	return c
}
