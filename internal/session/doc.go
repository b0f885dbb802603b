// Package session owns the authentication session of the task client.
//
// A [Manager] starts Loading, resolves once through [Manager.Restore], and moves between
// Authenticated and Unauthenticated through [Manager.Login], [Manager.Register] and
// [Manager.Logout]. Every transition goes through one pure reduce function under the
// manager's lock.
//
// # Persistence
//
// The session survives restarts in a [Store] under two keys:
//   - "token": the opaque bearer credential
//   - "user": the JSON {id, email} record
//
// Store failures are never returned. Restore treats them as no session. Writes and removals
// are best effort and only logged.
//
// # Ordering
//
// Login, Register and Logout wait until Restore has resolved, and Restore only ever resolves a
// Loading session, so a late restore cannot overwrite a login.
//
// The manager also implements [oauth2.TokenSource], which is how the REST client finds the
// bearer credential for each request.
package session
