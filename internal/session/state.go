package session

import "github.com/desertthunder/taskr/internal/models"

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	User    *models.User
	Token   string
	Loading bool
}

// Authenticated reports whether the snapshot holds both halves of a session.
func (s Snapshot) Authenticated() bool {
	return !s.Loading && s.User != nil && s.Token != ""
}

// State names the snapshot's position in the session lifecycle.
func (s Snapshot) State() string {
	switch {
	case s.Loading:
		return "loading"
	case s.Authenticated():
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

type actionKind int

const (
	actionRestore actionKind = iota
	actionLogin
	actionLogout
)

type action struct {
	kind  actionKind
	user  *models.User
	token string
}

// reduce returns the state that follows s under a.
//
// Restore only resolves a Loading session. Login and logout always apply and always clear Loading.
func reduce(s Snapshot, a action) Snapshot {
	switch a.kind {
	case actionRestore:
		if !s.Loading {
			return s
		}
		if a.user == nil || a.token == "" {
			return Snapshot{}
		}
		return Snapshot{User: a.user, Token: a.token}
	case actionLogin:
		return Snapshot{User: a.user, Token: a.token}
	case actionLogout:
		return Snapshot{}
	}
	return s
}

func (s Snapshot) clone() Snapshot {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
