// Package api is the thin JSON-over-HTTP layer between the SDK and the
// authentication API. It resolves paths against the configured base URL,
// attaches per-call headers and query parameters, and folds every non-2xx
// response into a single *Error carrying the server's message.
//
// # What this package must NOT do
//
//   - Retry requests.
//   - Interpret response bodies beyond the error message field.
package api
