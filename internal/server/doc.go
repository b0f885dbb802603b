// Package server implements a sandbox task service for local development and end-to-end tests.
//
// It speaks the same REST contract the client expects, with every route under /api:
//
//	POST   /auth/register      {email, password} -> 201 {token, user}
//	POST   /auth/login         {email, password} -> 200 {token, user}
//	GET    /health
//	GET    /tasks              bearer required
//	POST   /tasks
//	GET    /tasks/{id}
//	PUT    /tasks/{id}
//	PATCH  /tasks/{id}/complete
//	DELETE /tasks/{id}         204
//
// State lives in memory in a [Store] and is lost on exit. Passwords are hashed with bcrypt and
// tokens are random uuids with no expiry.
//
// Errors are JSON {"message": "..."}: 400 for validation, 401 for bad credentials or a missing
// token, 404 for unknown tasks (including tasks owned by another account) and 409 for a
// duplicate email.
package server
