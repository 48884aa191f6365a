package goAuthClient

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/MrEthical07/goAuthClient/mfa"
	"github.com/MrEthical07/goAuthClient/tokens"
)

// AuthResponse is the body of a login, signup or reset response.
type AuthResponse struct {
	Message           string              `json:"message,omitempty"`
	RedirectTo        string              `json:"redirectTo,omitempty"`
	IsMfaRequired     bool                `json:"isMfaRequired,omitempty"`
	FirstFactorToken  string              `json:"firstFactorToken,omitempty"`
	Authentication    *mfa.Authentication `json:"authentication,omitempty"`
	Tokens            *tokens.Issued      `json:"tokens,omitempty"`
	AuthorizationCode string              `json:"authorizationCode,omitempty"`
	UpstreamResponse  json.RawMessage     `json:"upstreamResponse,omitempty"`
	Result            json.RawMessage     `json:"result,omitempty"`

	// Raw is the undecoded body.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the whole body in Raw.
func (r *AuthResponse) UnmarshalJSON(b []byte) error {
	type plain AuthResponse
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = AuthResponse(p)
	r.Raw = append(json.RawMessage(nil), b...)
	return nil
}

func (r *AuthResponse) mfaResponse() mfa.Response {
	return mfa.Response{
		Message:          r.Message,
		IsMfaRequired:    r.IsMfaRequired,
		FirstFactorToken: r.FirstFactorToken,
		Authentication:   r.Authentication,
	}
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Hooks replace the default reaction to each kind of response. A nil field
// selects the default. A hook error stops the handler and is returned.
type Hooks struct {
	// HandleUpstreamResponse receives the identity provider's payload. No default.
	HandleUpstreamResponse func(ctx context.Context, upstream json.RawMessage, data *AuthResponse) error
	// HandleMfaRequired defaults to recording the first-factor token and
	// required second factors.
	HandleMfaRequired func(ctx context.Context, firstFactorToken string, data *AuthResponse) error
	// HandlePkceRequired defaults to navigating to target with the
	// authorization code appended.
	HandlePkceRequired func(ctx context.Context, authorizationCode, target string, data *AuthResponse) error
	// HandleTokens defaults to storing the tokens and clearing MFA state.
	HandleTokens func(ctx context.Context, issued *tokens.Issued, data *AuthResponse) error
	// HandleRedirect defaults to navigating to target.
	HandleRedirect func(ctx context.Context, target string, data *AuthResponse) error
}

// HandleLoginResponse runs the post-response action for data and returns data
// unchanged. Branches are tried in a fixed order and only one fires:
//
//  1. an upstream response is handed to HandleUpstreamResponse first, then
//     handling continues;
//  2. MFA required: the MFA hook runs and handling stops;
//  3. tokens: the tokens hook runs, then the redirect step;
//  4. an authorization code without tokens: the PKCE hook runs with the
//     explicit redirect path or data.RedirectTo and handling stops;
//  5. redirect, unless suppressed by NoRedirect.
func (c *Client) HandleLoginResponse(ctx context.Context, data *AuthResponse, redirect Redirect, hooks Hooks) (*AuthResponse, error) {
	if data == nil {
		return nil, nil
	}

	if present(data.UpstreamResponse) && hooks.HandleUpstreamResponse != nil {
		if err := hooks.HandleUpstreamResponse(ctx, data.UpstreamResponse, data); err != nil {
			return data, err
		}
	}

	if data.IsMfaRequired || data.FirstFactorToken != "" {
		c.metrics.Inc(MetricResponseMfaRequired)
		if hooks.HandleMfaRequired != nil {
			return data, hooks.HandleMfaRequired(ctx, data.FirstFactorToken, data)
		}
		c.mfa.HandleMfaRequired(data.mfaResponse())
		return data, nil
	}

	switch {
	case data.Tokens != nil:
		c.metrics.Inc(MetricResponseTokens)
		if hooks.HandleTokens != nil {
			if err := hooks.HandleTokens(ctx, data.Tokens, data); err != nil {
				return data, err
			}
		} else {
			c.tokens.SetIssued(data.Tokens)
			c.mfa.ClearMfa()
		}

	case data.AuthorizationCode != "":
		c.metrics.Inc(MetricResponsePkceRequired)
		target := data.RedirectTo
		if p, ok := redirect.Path(); ok {
			target = p
		}
		if target == "" {
			return data, ErrPkceRedirectMissing
		}
		if hooks.HandlePkceRequired != nil {
			return data, hooks.HandlePkceRequired(ctx, data.AuthorizationCode, target, data)
		}
		return data, c.pkce.HandleRequired(ctx, data.AuthorizationCode, target)
	}

	target, ok := c.resolveRedirect(redirect, data.RedirectTo)
	if !ok {
		return data, nil
	}
	c.metrics.Inc(MetricResponseRedirect)
	if hooks.HandleRedirect != nil {
		return data, hooks.HandleRedirect(ctx, target, data)
	}
	return data, c.navigate(ctx, target)
}
