// Package tokens keeps the access, ID and refresh tokens of one tenant session
// and mirrors every change to browser cookies.
//
// # Cookie policy
//
// Cookies are named "<kind>.<tenantId>". Access and ID cookies default to
// SameSite=Lax and Secure in live mode; options supplied by the server at
// issuance override the defaults. Refresh cookies are always SameSite=Strict.
//
// # Architecture boundaries
//
// [Store] is the only component allowed to touch token cookies. It never
// returns jar errors: a token that cannot be read is treated as absent.
package tokens
