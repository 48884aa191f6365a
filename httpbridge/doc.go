// Package httpbridge runs the client SDK inside an HTTP handler.
//
// An [Exchange] adapts one request/response pair to the browser primitives:
// cookies are read from the request and written as Set-Cookie headers, the
// location is the request URL, and navigation becomes an HTTP redirect.
// [Factory] builds a fresh goAuthClient.Client per request on top of an
// Exchange and a shared storage.
//
// # What this package must NOT do
//
//   - Share an Exchange between requests.
//   - Write a response body. Only headers and the redirect status are written.
package httpbridge
