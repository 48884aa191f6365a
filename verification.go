package goAuthClient

import (
	"context"

	"github.com/MrEthical07/goAuthClient/internal/api"
	"github.com/google/uuid"
)

// VerificationCodeOptions are the arguments of SendVerificationCode.
type VerificationCodeOptions struct {
	Channel     string
	Email       string
	PhoneNumber string
}

// SendVerificationCode asks the API to send a one-time code by email or SMS.
// While a second factor is pending the request carries the first-factor token.
func (c *Client) SendVerificationCode(ctx context.Context, opts VerificationCodeOptions) (*AuthResponse, error) {
	if opts.Channel == "" {
		return nil, missing("SendVerificationCode", "channel")
	}
	if err := checkChannel("SendVerificationCode", opts.Channel, opts.Email, opts.PhoneNumber); err != nil {
		return nil, err
	}
	body := sendCodeBody{
		TenantID:    c.TenantID(),
		Channel:     opts.Channel,
		Email:       opts.Email,
		PhoneNumber: opts.PhoneNumber,
	}
	var data AuthResponse
	if err := c.api.Post(ctx, "auth/code", body, c.firstFactorRequest(), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SendLoginLink emails a passwordless login link to an existing user.
func (c *Client) SendLoginLink(ctx context.Context, email string) (*AuthResponse, error) {
	if email == "" {
		return nil, missing("SendLoginLink", "email")
	}
	return c.sendLink(ctx, sendLinkBody{TenantID: c.TenantID(), Email: email})
}

type resetLinkBody struct {
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
}

// SendResetLink emails a password reset link.
func (c *Client) SendResetLink(ctx context.Context, email string) (*AuthResponse, error) {
	if email == "" {
		return nil, missing("SendResetLink", "email")
	}
	var data AuthResponse
	if err := c.api.Post(ctx, "auth/reset/link", resetLinkBody{TenantID: c.TenantID(), Email: email}, api.Request{}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ResetMethod selects how ResetPassword proves the caller may change the password.
type ResetMethod string

const (
	// ResetWithLink uses the token and uuid of an emailed reset link.
	ResetWithLink ResetMethod = "link"
	// ResetWithAccessToken uses the stored access token and the existing password.
	ResetWithAccessToken ResetMethod = "jwt"
)

// ResetPasswordOptions are the arguments of ResetPassword.
type ResetPasswordOptions struct {
	Method ResetMethod

	Password string

	// Token and UUID default to the page URL's query parameters.
	Token string
	UUID  string

	ExistingPassword string

	Redirect Redirect
	Hooks    Hooks
}

type resetWithLinkBody struct {
	TenantID string `json:"tenantId"`
	UUID     string `json:"uuid"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

type resetWithTokenBody struct {
	TenantID         string `json:"tenantId"`
	Password         string `json:"password"`
	ExistingPassword string `json:"existingPassword"`
}

// ResetPassword sets a new password. A link reset logs the user in, so its
// response goes through HandleLoginResponse; an access token reset returns
// the response as is.
func (c *Client) ResetPassword(ctx context.Context, opts ResetPasswordOptions) (*AuthResponse, error) {
	if opts.Password == "" {
		return nil, missing("ResetPassword", "password")
	}

	switch opts.Method {
	case "", ResetWithLink:
		token, id := opts.Token, opts.UUID
		q := c.pageQuery()
		if token == "" {
			token = q.Get("token")
		}
		if id == "" {
			id = q.Get("uuid")
		}
		if token == "" {
			return nil, missing("ResetPassword", "token")
		}
		if id == "" {
			return nil, missing("ResetPassword", "uuid")
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, &InputError{Call: "ResetPassword", Field: "uuid", Reason: "is not a valid UUID"}
		}
		body := resetWithLinkBody{TenantID: c.TenantID(), UUID: id, Token: token, Password: opts.Password}
		var data AuthResponse
		if err := c.api.Put(ctx, "auth/reset", body, api.Request{}, &data); err != nil {
			return nil, err
		}
		return c.HandleLoginResponse(ctx, &data, opts.Redirect, opts.Hooks)

	case ResetWithAccessToken:
		if opts.ExistingPassword == "" {
			return nil, missing("ResetPassword", "existingPassword")
		}
		access := c.tokens.AccessToken()
		if access == "" {
			return nil, ErrNoAccessToken
		}
		body := resetWithTokenBody{TenantID: c.TenantID(), Password: opts.Password, ExistingPassword: opts.ExistingPassword}
		var data AuthResponse
		if err := c.api.Put(ctx, "auth/basic", body, bearer(access), &data); err != nil {
			return nil, err
		}
		return &data, nil
	}
	return nil, unknownMethod("ResetPassword", string(opts.Method))
}
