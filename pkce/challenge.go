package pkce

import (
	"crypto/subtle"

	"golang.org/x/oauth2"
)

// GenerateChallenge creates a verifier and its S256 challenge for a native
// caller starting a PKCE flow. The challenge goes on the login page URL; the
// verifier stays with the caller for the code exchange.
func GenerateChallenge() (verifier, challenge string) {
	verifier = oauth2.GenerateVerifier()
	return verifier, oauth2.S256ChallengeFromVerifier(verifier)
}

// VerifyChallenge reports whether challenge is the S256 challenge of verifier.
func VerifyChallenge(verifier, challenge string) bool {
	if verifier == "" || challenge == "" {
		return false
	}
	computed := oauth2.S256ChallengeFromVerifier(verifier)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}
