package services

import (
	"net/http"

	"github.com/desertthunder/taskr/internal/shared"
	"golang.org/x/oauth2"
)

// bearerTransport decorates each outgoing request with the current bearer credential,
// a request id and the client's user agent.
//
// A token source that errors or yields an empty token leaves the request unauthenticated;
// the server decides whether to reject it.
type bearerTransport struct {
	base      http.RoundTripper
	source    oauth2.TokenSource
	userAgent string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())

	if r.Header.Get("X-Request-ID") == "" {
		r.Header.Set("X-Request-ID", shared.GenerateID())
	}
	if t.userAgent != "" {
		r.Header.Set("User-Agent", t.userAgent)
	}

	if t.source != nil {
		if tok, err := t.source.Token(); err == nil && tok != nil && tok.AccessToken != "" {
			tok.SetAuthHeader(r)
		}
	}

	return t.transport().RoundTrip(r)
}

func (t *bearerTransport) transport() http.RoundTripper {
	if t.base != nil {
		return t.base
	}
	return http.DefaultTransport
}
