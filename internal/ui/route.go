package ui

import "github.com/desertthunder/taskr/internal/session"

// Route is the screen set the session selects.
type Route int

const (
	RouteBlank Route = iota
	RouteUnauthenticated
	RouteAuthenticated
)

func (r Route) String() string {
	switch r {
	case RouteBlank:
		return "blank"
	case RouteUnauthenticated:
		return "unauthenticated"
	case RouteAuthenticated:
		return "authenticated"
	default:
		return ""
	}
}

// RouteFor projects a session onto a screen set. Nothing is shown while the session is loading.
func RouteFor(s session.Snapshot) Route {
	switch {
	case s.Loading:
		return RouteBlank
	case s.User != nil:
		return RouteAuthenticated
	default:
		return RouteUnauthenticated
	}
}
