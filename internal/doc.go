// Package internal holds the pieces of goAuthClient that are not part of its
// public API.
//
// # Sub-packages
//
//   - api: JSON transport to the authentication API (error decoding, per-call headers)
//   - profile: SQLite cookie jar and local storage used by cmd/authctl
//
// # What this package must NOT do
//
//   - Export types that appear in the public goAuthClient API.
//   - Be imported by any package outside the goAuthClient module.
package internal
