// Package mfa tracks the tenant's configured first factors and the pending
// second step of a multi-factor login.
//
// A [State] is either idle or awaiting a second factor. It moves to awaiting
// whenever an authentication response reports that MFA is required, replacing
// any previous first-factor token, and back to idle on [State.ClearMfa] or
// [State.ResetMfa]. The first-factor token is never validated locally; the
// server rejects it once it expires.
package mfa

import (
	"bytes"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Factor describes one authentication factor, e.g. {password, emailOrUsername}
// or {totp, authenticator}.
type Factor struct {
	Strategy string `json:"strategy"`
	Channel  string `json:"channel"`
}

// Authentication is the "authentication" object the API attaches to tenant
// configuration and MFA-required responses.
type Authentication struct {
	FirstFactors  []Factor `json:"firstFactors,omitempty"`
	SecondFactors []Factor `json:"secondFactors,omitempty"`
}

// Response carries the fields of an authentication response that drive the
// state machine.
type Response struct {
	Message          string
	IsMfaRequired    bool
	FirstFactorToken string
	Authentication   *Authentication
}

// Required reports whether r asks for a second factor.
func (r Response) Required() bool {
	return r.IsMfaRequired || r.FirstFactorToken != ""
}

// State is the MFA state of one session context.
type State struct {
	mu               sync.Mutex
	tenantID         func() string
	log              *zap.Logger
	firstFactors     []Factor
	secondFactors    []Factor
	firstFactorToken string
}

// New returns an idle state. tenantID reports the tenant of the owning
// session; first factors are only accepted while it is non-empty.
func New(tenantID func() string, logger *zap.Logger) *State {
	if tenantID == nil {
		tenantID = func() string { return "" }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{tenantID: tenantID, log: logger}
}

// SetFirstFactors replaces the first factors with the ones listed in raw, the
// tenant's "authentication" configuration. Invalid input is logged and ignored.
func (s *State) SetFirstFactors(raw json.RawMessage) {
	if s.tenantID() == "" {
		s.log.Warn("cannot set first factors: missing tenant id")
		return
	}

	factors, ok := parseFirstFactors(raw)
	if !ok {
		s.log.Warn("cannot set first factors: authentication config must contain a firstFactors array")
		return
	}

	s.mu.Lock()
	s.firstFactors = factors
	s.mu.Unlock()
}

func parseFirstFactors(raw json.RawMessage) ([]Factor, bool) {
	var cfg map[string]json.RawMessage
	if err := json.Unmarshal(raw, &cfg); err != nil || cfg == nil {
		return nil, false
	}
	list, ok := cfg["firstFactors"]
	if !ok {
		return nil, false
	}
	list = bytes.TrimSpace(list)
	if len(list) == 0 || list[0] != '[' {
		return nil, false
	}
	factors := []Factor{}
	if err := json.Unmarshal(list, &factors); err != nil {
		return nil, false
	}
	return factors, true
}

// IsMfaRequired reports whether a second factor is pending.
func (s *State) IsMfaRequired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstFactorToken != ""
}

// HandleMfaRequired applies resp. A response requiring MFA overwrites the
// second factors and first-factor token; a fully successful one ("OK") clears
// them; anything else is ignored. A response requiring MFA without a
// first-factor token is logged and leaves the state unchanged.
func (s *State) HandleMfaRequired(resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !resp.Required() {
		if resp.Message == "OK" {
			s.clear()
		}
		return
	}
	if resp.FirstFactorToken == "" {
		s.log.Warn("ignoring mfa required response without first factor token")
		return
	}

	s.secondFactors = nil
	if resp.Authentication != nil {
		s.secondFactors = append([]Factor(nil), resp.Authentication.SecondFactors...)
	}
	s.firstFactorToken = resp.FirstFactorToken
}

// MfaHeaders returns the authorization header continuing a pending MFA flow,
// or an empty map.
func (s *State) MfaHeaders() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.firstFactorToken == "" {
		return map[string]string{}
	}
	return map[string]string{"authorization": "Bearer " + s.firstFactorToken}
}

// ClearMfa ends a pending MFA flow. First factors are kept.
func (s *State) ClearMfa() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

func (s *State) clear() {
	s.secondFactors = nil
	s.firstFactorToken = ""
}

// ResetMfa returns the state to uninitialized, first factors included.
func (s *State) ResetMfa() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	s.firstFactors = nil
}

// FirstFactors returns a copy of the tenant's first factors.
func (s *State) FirstFactors() []Factor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Factor(nil), s.firstFactors...)
}

// SecondFactors returns a copy of the second factors required by the pending
// flow.
func (s *State) SecondFactors() []Factor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Factor(nil), s.secondFactors...)
}

// FirstFactorToken returns the pending first-factor token.
func (s *State) FirstFactorToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstFactorToken, s.firstFactorToken != ""
}
