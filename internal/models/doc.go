// Package models defines the entities exchanged with the task service.
//
//   - [User] : the authenticated account ({id, email}), persisted locally as JSON under the "user" key
//   - [AuthResponse] : {token, user} returned by login and registration
//   - [Task] : a remote-owned task; the client only ever holds a transient copy
//   - [TaskInput] : create/update request body with [TaskInput.Validate] mirroring form validation
//   - [Priority] : the low/med/high/urgent enumeration
//
// Tasks use "_id" as the identifier on the wire; [Task.UnmarshalJSON] also accepts "id".
package models
