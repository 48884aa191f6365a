package jwt

import (
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod names the algorithm tokens are expected to be signed with.
type SigningMethod string

const (
	// MethodRS256 is RSA PKCS#1 v1.5 with SHA-256.
	MethodRS256 SigningMethod = "rs256"
	// MethodEd25519 is EdDSA over Ed25519.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 is HMAC with SHA-256 using a shared secret.
	MethodHS256 SigningMethod = "hs256"
)

// Config configures a [Verifier]. PublicKey (or Secret for hs256) is used when
// no VerifyKeys map is given; with VerifyKeys the token's kid selects the key.
// Keys may be raw bytes (ed25519) or PEM.
type Config struct {
	SigningMethod SigningMethod
	PublicKey     []byte
	Secret        []byte
	VerifyKeys    map[string][]byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	MaxFutureIAT  time.Duration
}

// Verifier checks signatures and registered claims of API-issued tokens.
type Verifier struct {
	config Config
	keys   map[string]any
	key    any
}

// NewVerifier validates cfg and parses its keys.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return nil, errors.New("invalid MaxFutureIAT configuration")
	}
	if cfg.SigningMethod == "" {
		cfg.SigningMethod = MethodRS256
	}

	v := &Verifier{config: cfg, keys: make(map[string]any, len(cfg.VerifyKeys))}
	for kid, raw := range cfg.VerifyKeys {
		if strings.TrimSpace(kid) == "" {
			return nil, errors.New("verify key map contains empty kid")
		}
		key, err := v.parseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid verify key for kid %q: %w", kid, err)
		}
		v.keys[kid] = key
	}

	if len(v.keys) == 0 {
		raw := cfg.PublicKey
		if cfg.SigningMethod == MethodHS256 {
			raw = cfg.Secret
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("%s requires a verification key", cfg.SigningMethod)
		}
		key, err := v.parseKey(raw)
		if err != nil {
			return nil, err
		}
		v.key = key
	}
	return v, nil
}

// VerifyAccess verifies an access token and returns its claims.
func (v *Verifier) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := v.verify(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyID verifies an ID token and returns its claims.
func (v *Verifier) VerifyID(token string) (*IDClaims, error) {
	claims := &IDClaims{}
	if err := v.verify(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *Verifier) verify(token string, claims jwt.Claims) error {
	if token == "" {
		return ErrEmptyToken
	}

	method := v.method()
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(v.config.Leeway))
	}
	if v.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		options = append(options, jwt.WithAudience(v.config.Audience))
	}

	parsed, err := jwt.NewParser(options...).ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		if len(v.keys) > 0 {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("missing kid")
			}
			key, ok := v.keys[kid]
			if !ok {
				return nil, errors.New("unknown kid")
			}
			return key, nil
		}
		return v.key, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return jwt.ErrTokenInvalidClaims
	}

	iat, err := claims.GetIssuedAt()
	if err == nil && iat != nil && iat.Time.After(time.Now().Add(v.config.MaxFutureIAT)) {
		return errors.New("token iat too far in the future")
	}
	return nil
}

func (v *Verifier) method() jwt.SigningMethod {
	switch v.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodRS256
	}
}

func (v *Verifier) parseKey(raw []byte) (any, error) {
	switch v.config.SigningMethod {
	case MethodHS256:
		return raw, nil
	case MethodEd25519:
		return parseEdPublicKey(raw)
	case MethodRS256:
		return parseRSAPublicKey(raw)
	default:
		return nil, errors.New("unsupported signing method")
	}
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}

func parseRSAPublicKey(key []byte) (*rsa.PublicKey, error) {
	parsed, err := jwt.ParseRSAPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid rsa public key")
	}
	return parsed, nil
}
