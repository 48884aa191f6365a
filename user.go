package goAuthClient

import (
	"github.com/MrEthical07/goAuthClient/jwt"
	"go.uber.org/zap"
)

// User is the profile carried by the ID token.
type User struct {
	UserID      int64
	UserUUID    string
	TenantID    string
	Mode        string
	Email       string
	Username    string
	Name        string
	Image       string
	PhoneNumber string
	IsConfirmed bool
	Data        map[string]any

	access        *jwt.AccessClaims
	defaultTenant string
}

// User decodes the stored ID token. It returns nil when there is no ID token
// or it cannot be decoded. Claims are not verified; use VerifyAccessToken for
// authorization decisions.
func (c *Client) User() *User {
	raw := c.tokens.IDToken()
	if raw == "" {
		return nil
	}
	claims, err := jwt.DecodeID(raw)
	if err != nil {
		c.log.Debug("id token decode failed", zap.Error(err))
		return nil
	}

	u := &User{
		UserID:        claims.UserID,
		UserUUID:      claims.UserUUID,
		TenantID:      claims.TenantID,
		Mode:          claims.Mode,
		Email:         claims.Email,
		Username:      claims.Username,
		Name:          claims.Name,
		Image:         claims.Image,
		PhoneNumber:   claims.PhoneNumber,
		IsConfirmed:   claims.IsConfirmed,
		Data:          claims.Data,
		defaultTenant: c.TenantID(),
	}
	if access := c.tokens.AccessToken(); access != "" {
		if ac, err := jwt.DecodeAccess(access); err == nil {
			u.access = ac
		}
	}
	return u
}

// HasRole reports whether the access token grants role in tenantID, or in
// the client's tenant when tenantID is empty.
func (u *User) HasRole(role, tenantID string) bool {
	if u == nil {
		return false
	}
	if tenantID == "" {
		tenantID = u.defaultTenant
	}
	return u.access.HasRole(tenantID, role)
}

// VerifyAccessToken verifies the stored access token with the configured
// verifier and returns its claims.
func (c *Client) VerifyAccessToken() (*jwt.AccessClaims, error) {
	if c.verifier == nil {
		return nil, ErrNoVerifier
	}
	access := c.tokens.AccessToken()
	if access == "" {
		return nil, ErrNoAccessToken
	}
	return c.verifier.VerifyAccess(access)
}
