package tokens

import (
	"net/http"
	"strings"
)

// Kind identifies one of the three session tokens.
type Kind int

const (
	// Access is the bearer token sent to resource servers.
	Access Kind = iota
	// ID carries the user profile claims.
	ID
	// Refresh is exchanged for a new token set.
	Refresh
	kindCount
)

// Kinds lists every token kind in cookie write order.
var Kinds = []Kind{Access, ID, Refresh}

func (k Kind) String() string {
	switch k {
	case Access:
		return "access"
	case ID:
		return "id"
	case Refresh:
		return "refresh"
	default:
		return "unknown"
	}
}

func (k Kind) valid() bool { return k >= Access && k < kindCount }

// CookieOptions are the cookie attributes a server may attach to an issued
// token. Expires is expressed in days.
type CookieOptions struct {
	Secure   *bool   `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
}

// Issuance is one token as returned by the authentication API.
type Issuance struct {
	Value         string         `json:"value"`
	CookieOptions *CookieOptions `json:"cookieOptions,omitempty"`
}

// Issued is the "tokens" object of a successful authentication response.
type Issued struct {
	Access  *Issuance `json:"access,omitempty"`
	ID      *Issuance `json:"id,omitempty"`
	Refresh *Issuance `json:"refresh,omitempty"`
}

// Get returns the issuance for kind, or nil.
func (i *Issued) Get(kind Kind) *Issuance {
	if i == nil {
		return nil
	}
	switch kind {
	case Access:
		return i.Access
	case ID:
		return i.ID
	case Refresh:
		return i.Refresh
	default:
		return nil
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return 0
	}
}
