// Package browser defines the primitives the client SDK needs from its host
// environment: a cookie jar, a key/value local storage, the current location
// and a navigator.
//
// # Architecture boundaries
//
// The package owns the interfaces and a set of ready implementations: in-memory
// ones for tests and CLI usage ([MemoryJar], [MemoryStorage], [StaticLocation],
// [RecordingNavigator]) and a Redis-backed [RedisStorage] for server-side
// rendering setups where many processes share one PKCE cache.
//
// # What this package must NOT do
//
//   - Interpret token values or cookie names (that belongs to package tokens).
//   - Import goAuthClient or any sibling package.
package browser
