package goAuthClient

import (
	"context"
	"net/url"
	"strings"

	"github.com/MrEthical07/goAuthClient/internal/api"
	"github.com/google/uuid"
)

// Method names a login or signup strategy.
type Method string

// Supported methods. Any SSO provider name, e.g. "google", is also accepted
// as a Login or Signup method.
const (
	MethodPassword         Method = "password"
	MethodPasswordless     Method = "passwordless"
	MethodLink             Method = "link"
	MethodTotp             Method = "totp"
	MethodVerificationCode Method = "verificationCode"
	MethodSSO              Method = "sso"
	MethodSAML             Method = "saml"
)

// ssoProviders may be passed directly as a Method.
var ssoProviders = map[string]struct{}{
	"apple":     {},
	"azure":     {},
	"custom":    {},
	"facebook":  {},
	"github":    {},
	"google":    {},
	"linkedin":  {},
	"microsoft": {},
	"okta":      {},
}

// LoginOptions are the arguments of Login. Which fields are required depends
// on Method.
type LoginOptions struct {
	Method Method

	Email           string
	Username        string
	EmailOrUsername string
	PhoneNumber     string
	Password        string

	// Token and UUID are the magic link credentials. Empty values are read from
	// the page URL.
	Token string
	UUID  string

	TotpCode   string
	BackupCode string
	UserID     int64
	UserUUID   string

	Channel          string
	VerificationCode string

	Provider   string
	ProviderID string

	Name string
	Data map[string]any

	Redirect Redirect
	Hooks    Hooks
}

type passwordLoginBody struct {
	TenantID        string `json:"tenantId"`
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

type linkLoginBody struct {
	TenantID string `json:"tenantId"`
	Token    string `json:"token"`
	UUID     string `json:"uuid"`
}

type sendLinkBody struct {
	TenantID string         `json:"tenantId"`
	Email    string         `json:"email"`
	Name     string         `json:"name,omitempty"`
	Username string         `json:"username,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

type totpLoginBody struct {
	TenantID        string `json:"tenantId"`
	TotpCode        string `json:"totpCode,omitempty"`
	BackupCode      string `json:"backupCode,omitempty"`
	UserID          int64  `json:"userId,omitempty"`
	UserUUID        string `json:"userUuid,omitempty"`
	EmailOrUsername string `json:"emailOrUsername,omitempty"`
	Email           string `json:"email,omitempty"`
	Username        string `json:"username,omitempty"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
}

type codeLoginBody struct {
	TenantID         string `json:"tenantId"`
	Channel          string `json:"channel"`
	Email            string `json:"email,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	VerificationCode string `json:"verificationCode"`
}

// Login runs one login strategy. Strategies answered with tokens, an MFA
// challenge or an authorization code go through HandleLoginResponse; the
// returned response is the server's, unchanged.
func (c *Client) Login(ctx context.Context, opts LoginOptions) (*AuthResponse, error) {
	switch opts.Method {
	case MethodPassword:
		return c.loginWithPassword(ctx, opts)
	case MethodPasswordless:
		if opts.Email == "" {
			return nil, missing("Login", "email")
		}
		return c.sendLink(ctx, sendLinkBody{
			TenantID: c.TenantID(),
			Email:    opts.Email,
			Name:     opts.Name,
			Username: opts.Username,
			Data:     opts.Data,
		})
	case MethodLink:
		return c.loginWithLink(ctx, opts)
	case MethodTotp:
		return c.loginWithTotp(ctx, opts)
	case MethodVerificationCode:
		return c.loginWithVerificationCode(ctx, opts)
	case MethodSSO:
		return nil, c.loginWithSSO(ctx, "Login", opts.Provider, opts.ProviderID, opts.Redirect)
	case MethodSAML:
		return nil, c.loginWithSAML(ctx)
	case "":
		return nil, missing("Login", "method")
	}
	if _, ok := ssoProviders[string(opts.Method)]; ok {
		return nil, c.loginWithSSO(ctx, "Login", string(opts.Method), opts.ProviderID, opts.Redirect)
	}
	return nil, unknownMethod("Login", string(opts.Method))
}

func (c *Client) loginWithPassword(ctx context.Context, opts LoginOptions) (*AuthResponse, error) {
	identifier := firstNonEmpty(opts.Email, opts.Username, opts.EmailOrUsername)
	if identifier == "" {
		return nil, missing("Login", "email, username or emailOrUsername")
	}
	if opts.Password == "" {
		return nil, missing("Login", "password")
	}
	body := passwordLoginBody{
		TenantID:        c.TenantID(),
		EmailOrUsername: identifier,
		Password:        opts.Password,
	}
	return c.submitLogin(ctx, c.api.Post, "auth/basic", body, opts.Redirect, opts.Hooks)
}

func (c *Client) loginWithLink(ctx context.Context, opts LoginOptions) (*AuthResponse, error) {
	token, id := opts.Token, opts.UUID
	if token == "" || id == "" {
		q := c.pageQuery()
		if token == "" {
			token = q.Get("token")
		}
		if id == "" {
			id = q.Get("uuid")
		}
	}
	if token == "" {
		return nil, missing("Login", "token")
	}
	if id == "" {
		return nil, missing("Login", "uuid")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, &InputError{Call: "Login", Field: "uuid", Reason: "is not a valid UUID"}
	}
	body := linkLoginBody{TenantID: c.TenantID(), Token: token, UUID: id}
	return c.submitLogin(ctx, c.api.Put, "auth/link", body, opts.Redirect, opts.Hooks)
}

func (c *Client) loginWithTotp(ctx context.Context, opts LoginOptions) (*AuthResponse, error) {
	if opts.TotpCode == "" && opts.BackupCode == "" {
		return nil, missing("Login", "totpCode or backupCode")
	}
	body := totpLoginBody{
		TenantID:        c.TenantID(),
		TotpCode:        opts.TotpCode,
		BackupCode:      opts.BackupCode,
		UserID:          opts.UserID,
		UserUUID:        opts.UserUUID,
		EmailOrUsername: opts.EmailOrUsername,
		Email:           opts.Email,
		Username:        opts.Username,
		PhoneNumber:     opts.PhoneNumber,
	}
	return c.submitLogin(ctx, c.api.Post, "auth/totp", body, opts.Redirect, opts.Hooks)
}

func (c *Client) loginWithVerificationCode(ctx context.Context, opts LoginOptions) (*AuthResponse, error) {
	if opts.Channel == "" {
		return nil, missing("Login", "channel")
	}
	if err := checkChannel("Login", opts.Channel, opts.Email, opts.PhoneNumber); err != nil {
		return nil, err
	}
	if opts.VerificationCode == "" {
		return nil, missing("Login", "verificationCode")
	}
	body := codeLoginBody{
		TenantID:         c.TenantID(),
		Channel:          opts.Channel,
		Email:            opts.Email,
		PhoneNumber:      opts.PhoneNumber,
		VerificationCode: opts.VerificationCode,
	}
	return c.submitLogin(ctx, c.api.Put, "auth/code", body, opts.Redirect, opts.Hooks)
}

type sendFunc func(ctx context.Context, path string, body any, req api.Request, out any) error

// submitLogin sends a first- or second-factor request and hands the answer to
// HandleLoginResponse.
func (c *Client) submitLogin(ctx context.Context, send sendFunc, path string, body any, redirect Redirect, hooks Hooks) (*AuthResponse, error) {
	var data AuthResponse
	if err := send(ctx, path, body, c.firstFactorRequest(), &data); err != nil {
		c.metrics.Inc(MetricLoginFailure)
		return nil, err
	}
	c.metrics.Inc(MetricLoginSuccess)
	return c.HandleLoginResponse(ctx, &data, redirect, hooks)
}

// sendLink asks the API to email a login link. The response is returned as is.
func (c *Client) sendLink(ctx context.Context, body sendLinkBody) (*AuthResponse, error) {
	var data AuthResponse
	if err := c.api.Post(ctx, "auth/link", body, c.firstFactorRequest(), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// loginWithSSO sends the page to the provider's login endpoint.
func (c *Client) loginWithSSO(ctx context.Context, call, provider, providerID string, redirect Redirect) error {
	if provider == "" {
		if providerID == "" {
			return missing(call, "provider")
		}
		provider = "custom"
	}
	if provider == "custom" && providerID == "" {
		return missing(call, "providerId")
	}

	q := url.Values{}
	q.Set("tenant_id", c.TenantID())
	if origin := c.origin(); origin != "" {
		q.Set("origin", origin)
	}
	if !redirect.Disabled() {
		if p, ok := redirect.Path(); ok {
			q.Set("redirect", p)
		} else if fromQuery := c.queryRedirect(); fromQuery != "" {
			q.Set("redirect", fromQuery)
		}
	}
	if providerID != "" {
		q.Set("providerId", providerID)
	}
	for k, v := range c.pkce.RequestQueryParams() {
		q[k] = v
	}

	return c.navigator.Navigate(ctx, c.api.URL("auth/"+strings.ToLower(provider)+"/login", q))
}

type samlTokenResponse struct {
	Token string `json:"token"`
	UUID  string `json:"uuid"`
}

// loginWithSAML exchanges the access token for a one-time SAML token and
// hands the page to the identity provider endpoint.
func (c *Client) loginWithSAML(ctx context.Context) error {
	access := c.tokens.AccessToken()
	if access == "" {
		return ErrNoAccessToken
	}
	var resp samlTokenResponse
	if err := c.api.Get(ctx, "auth/saml/idp/token", bearer(access), &resp); err != nil {
		return err
	}
	q := url.Values{}
	q.Set("tenant_id", c.TenantID())
	q.Set("token", resp.Token)
	q.Set("uuid", resp.UUID)
	return c.navigator.Navigate(ctx, c.api.URL("auth/saml/idp/login", q))
}

func (c *Client) origin() string {
	u := c.location.URL()
	if u == nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func checkChannel(call, channel, email, phone string) error {
	switch channel {
	case "email":
		if email == "" {
			return missing(call, "email")
		}
	case "sms":
		if phone == "" {
			return missing(call, "phoneNumber")
		}
	default:
		return &InputError{Call: call, Field: "channel", Reason: "must be \"email\" or \"sms\""}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
