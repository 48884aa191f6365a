// Package jwt reads the claims of tokens issued by the authentication API and,
// when keys are configured, verifies their signatures with strict validation
// semantics.
//
// Profile data shown to the user comes from [DecodeID], which does not verify
// the signature: the browser cannot hold the signing key and the server stays
// the authority. Code that makes authorization decisions must use [Verifier].
package jwt
