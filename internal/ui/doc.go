// Package ui implements the interactive terminal client using bubbletea's Elm architecture.
//
// The navigation shell is [RouteFor]: a pure projection of the session onto a screen set.
//   - [RouteBlank]: the session is still restoring, so View renders nothing
//   - [RouteUnauthenticated]: the login/register form (ctrl+r switches mode)
//   - [RouteAuthenticated]: the task screens
//
// Authenticated screens:
//  1. [TaskListScreen] : browse, toggle (space/c), delete (x), refresh (r), logout (L)
//  2. [TaskFormScreen] : create (n) or edit (enter/e) title, description, priority and due date
//  3. [ConfirmDeleteScreen] : confirm a delete with y/n
//
// Every network call runs as a tea.Cmd and reports back through a message. Returning to the
// list re-fetches it; between fetches mutations patch the cached [tasks.List]. An empty list
// renders the "No tasks yet" state.
package ui
