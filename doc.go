// Package goAuthClient is a client-side authentication SDK. It drives the
// login, signup, MFA and PKCE flows of a hosted authentication API and keeps
// the resulting session (access, ID and refresh tokens) mirrored into cookies.
//
// A [Client] is one session context, created with [New] and [Builder.Build].
// Browser primitives (cookie jar, local storage, page location, navigation)
// are interfaces from package browser, so a Client runs in a server-side
// rendering handler (package httpbridge), a CLI, or a test.
//
// # Architecture boundaries
//
// goAuthClient is the public surface: [Client], [Builder], [Config], the
// response handler ([Client.HandleLoginResponse], [Hooks], [Redirect]) and
// the strategy dispatchers. State machines live in sub-packages: tokens
// (token store and cookie policy), mfa (first-factor state), pkce (code
// challenge cache), mode (test/live heuristic). The HTTP wrapper is under
// internal/api.
//
// # What this package must NOT do
//
//   - Verify or issue credentials itself. The API is the authority; local
//     JWT verification is opt-in through [Builder.WithVerifier].
//   - Keep package-level state. Every Client is independent.
//   - Retry failed requests.
package goAuthClient
