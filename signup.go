package goAuthClient

import "context"

// SignupOptions are the arguments of Signup.
type SignupOptions struct {
	Method Method

	Email       string
	Username    string
	Name        string
	PhoneNumber string
	Password    string
	Data        map[string]any

	Channel string

	Provider   string
	ProviderID string

	Redirect Redirect
	Hooks    Hooks
}

type passwordSignupBody struct {
	TenantID string         `json:"tenantId"`
	Email    string         `json:"email"`
	Username string         `json:"username,omitempty"`
	Name     string         `json:"name,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Password string         `json:"password"`
}

type sendCodeBody struct {
	TenantID    string         `json:"tenantId"`
	Channel     string         `json:"channel"`
	Email       string         `json:"email,omitempty"`
	PhoneNumber string         `json:"phoneNumber,omitempty"`
	Name        string         `json:"name,omitempty"`
	Username    string         `json:"username,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// Signup creates an account with one strategy. Password signups go through
// HandleLoginResponse; passwordless and verification code signups only ask
// the API to send a link or code and return its answer.
func (c *Client) Signup(ctx context.Context, opts SignupOptions) (*AuthResponse, error) {
	switch opts.Method {
	case MethodPassword:
		return c.signupWithPassword(ctx, opts)
	case MethodPasswordless:
		return c.signupWithLink(ctx, opts)
	case MethodVerificationCode:
		return c.signupWithVerificationCode(ctx, opts)
	case MethodSSO:
		return nil, c.loginWithSSO(ctx, "Signup", opts.Provider, opts.ProviderID, opts.Redirect)
	case "":
		return nil, missing("Signup", "method")
	}
	if _, ok := ssoProviders[string(opts.Method)]; ok {
		return nil, c.loginWithSSO(ctx, "Signup", string(opts.Method), opts.ProviderID, opts.Redirect)
	}
	return nil, unknownMethod("Signup", string(opts.Method))
}

func (c *Client) signupWithPassword(ctx context.Context, opts SignupOptions) (*AuthResponse, error) {
	if opts.Email == "" {
		return nil, missing("Signup", "email")
	}
	if opts.Password == "" {
		return nil, missing("Signup", "password")
	}
	body := passwordSignupBody{
		TenantID: c.TenantID(),
		Email:    opts.Email,
		Username: opts.Username,
		Name:     opts.Name,
		Data:     opts.Data,
		Password: opts.Password,
	}

	var data AuthResponse
	if err := c.api.Post(ctx, "auth/create", body, c.firstFactorRequest(), &data); err != nil {
		c.metrics.Inc(MetricSignupFailure)
		return nil, err
	}
	c.metrics.Inc(MetricSignupSuccess)
	return c.HandleLoginResponse(ctx, &data, opts.Redirect, opts.Hooks)
}

func (c *Client) signupWithLink(ctx context.Context, opts SignupOptions) (*AuthResponse, error) {
	if opts.Email == "" {
		return nil, missing("Signup", "email")
	}
	body := sendLinkBody{
		TenantID: c.TenantID(),
		Email:    opts.Email,
		Name:     opts.Name,
		Username: opts.Username,
		Data:     opts.Data,
	}
	return c.signupRequest(ctx, "auth/passwordless", body)
}

func (c *Client) signupWithVerificationCode(ctx context.Context, opts SignupOptions) (*AuthResponse, error) {
	if opts.Channel == "" {
		return nil, missing("Signup", "channel")
	}
	if err := checkChannel("Signup", opts.Channel, opts.Email, opts.PhoneNumber); err != nil {
		return nil, err
	}
	body := sendCodeBody{
		TenantID:    c.TenantID(),
		Channel:     opts.Channel,
		Email:       opts.Email,
		PhoneNumber: opts.PhoneNumber,
		Name:        opts.Name,
		Username:    opts.Username,
		Data:        opts.Data,
	}
	return c.signupRequest(ctx, "auth/code", body)
}

func (c *Client) signupRequest(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var data AuthResponse
	if err := c.api.Post(ctx, path, body, c.firstFactorRequest(), &data); err != nil {
		c.metrics.Inc(MetricSignupFailure)
		return nil, err
	}
	c.metrics.Inc(MetricSignupSuccess)
	return &data, nil
}
