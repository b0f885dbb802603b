// Package repositories implements SQLite persistence for the client's local state.
//
// [KVRepository] is the persistent key-value store behind the session: it holds the opaque
// bearer credential under "token" and the serialized {id, email} record under "user".
// Both keys are written together on login and removed together on logout, but each
// statement stands alone, so a crash between the two can leave only one of them behind.
// The session layer treats that as "no session" on the next restore.
//
// All failures wrap [shared.ErrStore]; lookups of absent keys wrap [shared.ErrKeyNotFound].
package repositories
