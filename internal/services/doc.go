// Package services implements the REST client for the remote task service.
//
// A single [Client] resolves every path against the configured base URL. Its transport asks an
// [oauth2.TokenSource] (normally the session manager) for the current credential on every request
// and sets "Authorization: Bearer <token>" when one is held. With no token the request goes out
// unauthenticated.
//
// # Services
//
//   - [AuthService]: POST /auth/login and POST /auth/register, both returning {token, user}
//   - [TaskService]: list, get, create, update, toggle-complete and delete under /tasks
//
// # Error Handling
//
// Non-2xx responses become an [*APIError] carrying the service's "message" field. Network
// failures wrap [shared.ErrTransport]. [UserMessage] picks the text a screen shows: the
// structured message when there is one, otherwise a generic transport message.
package services
