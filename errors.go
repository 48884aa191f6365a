package goAuthClient

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goAuthClient/internal/api"
)

var (
	// ErrTransport wraps network failures that happened before the API answered.
	ErrTransport = api.ErrTransport
	// ErrPkceRedirectMissing is returned when a response carries an authorization
	// code but neither the caller nor the response names where to send it.
	ErrPkceRedirectMissing = errors.New("authorization code received without a redirect target")
	// ErrUnknownMethod is returned for a login or signup method the SDK does not know.
	ErrUnknownMethod = errors.New("unknown authentication method")
	// ErrNoAccessToken is returned by calls that need a stored access token.
	ErrNoAccessToken = errors.New("no access token")
	// ErrNoRefreshToken is returned by Refresh when no refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrNoVerifier is returned by VerifyAccessToken when no verifier was configured.
	ErrNoVerifier = errors.New("no token verifier configured")
	// ErrBuilderUsed is returned by a second call to Builder.Build.
	ErrBuilderUsed = errors.New("builder already used")
)

// APIError is a non-2xx response from the authentication API. Its Error
// method returns the server's message verbatim.
type APIError = api.Error

// InputError reports a missing or malformed argument. It is returned before
// any request is sent.
type InputError struct {
	Call   string
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s %s", e.Call, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: missing %s", e.Call, e.Field)
}

func missing(call, field string) error {
	return &InputError{Call: call, Field: field}
}

func unknownMethod(call, method string) error {
	return fmt.Errorf("%s: %w %q", call, ErrUnknownMethod, method)
}
