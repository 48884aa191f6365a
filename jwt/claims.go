package jwt

import (
	"errors"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyToken is returned when decoding an empty token string.
var ErrEmptyToken = errors.New("empty token")

// TenantAuthorization lists the roles a user holds in one tenant.
type TenantAuthorization struct {
	Roles []string `json:"roles"`
}

// IDClaims are the profile claims carried by an ID token.
type IDClaims struct {
	UserID      int64          `json:"userId,omitempty"`
	UserUUID    string         `json:"userUuid,omitempty"`
	TenantID    string         `json:"tenantId,omitempty"`
	Mode        string         `json:"mode,omitempty"`
	Email       string         `json:"email,omitempty"`
	Username    string         `json:"username,omitempty"`
	Name        string         `json:"name,omitempty"`
	Image       string         `json:"image,omitempty"`
	PhoneNumber string         `json:"phoneNumber,omitempty"`
	IsConfirmed bool           `json:"isConfirmed,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	jwt.RegisteredClaims
}

// AccessClaims are the claims of an access token.
type AccessClaims struct {
	UserID        int64                          `json:"userId,omitempty"`
	UserUUID      string                         `json:"userUuid,omitempty"`
	TenantID      string                         `json:"tenantId,omitempty"`
	Mode          string                         `json:"mode,omitempty"`
	Authorization map[string]TenantAuthorization `json:"authorization,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims grant role in tenantID.
func (c *AccessClaims) HasRole(tenantID, role string) bool {
	if c == nil {
		return false
	}
	auth, ok := c.Authorization[tenantID]
	if !ok {
		return false
	}
	return slices.Contains(auth.Roles, role)
}

// DecodeID returns the claims of an ID token without verifying its signature.
func DecodeID(token string) (*IDClaims, error) {
	claims := &IDClaims{}
	if err := decodeUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// DecodeAccess returns the claims of an access token without verifying its
// signature.
func DecodeAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := decodeUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func decodeUnverified(token string, claims jwt.Claims) error {
	if token == "" {
		return ErrEmptyToken
	}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	return err
}
