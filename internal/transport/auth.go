package transport

import "net/http"

// Authenticator applies credentials to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth performs no authentication.
type NoAuth struct{}

// Apply implements Authenticator.
func (NoAuth) Apply(*http.Request) {}

// QueryAuth sends an API key as a URL query parameter. The Places API
// authenticates this way ("key=...").
type QueryAuth struct {
	Param string
	Key   string
}

// Apply implements Authenticator.
func (a QueryAuth) Apply(req *http.Request) {
	if a.Key == "" {
		return
	}
	q := req.URL.Query()
	q.Set(a.Param, a.Key)
	req.URL.RawQuery = q.Encode()
}

// HeaderAuth sends an API key in a request header, with an optional
// scheme prefix ("Bearer ...").
type HeaderAuth struct {
	Header string
	Scheme string
	Key    string
}

// Apply implements Authenticator.
func (a HeaderAuth) Apply(req *http.Request) {
	if a.Key == "" {
		return
	}
	value := a.Key
	if a.Scheme != "" {
		value = a.Scheme + " " + a.Key
	}
	req.Header.Set(a.Header, value)
}
