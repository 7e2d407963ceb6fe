// Package auth applies archive credentials to outgoing requests. The public
// NOAA bucket needs none; mirrors such as CDDIS sit behind basic or token auth.
package auth

import "net/http"

// Authenticator decorates a request with credentials.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// Type names an authentication scheme.
type Type string

// Authentication types.
const (
	BasicAuthType  Type = "basic"
	HeaderAuthType Type = "header"
	BearerAuthType Type = "bearer"
)

// BasicAuth sends HTTP Basic credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Apply sets the Authorization header.
func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// Type returns BasicAuthType.
func (b BasicAuth) Type() Type { return BasicAuthType }

// HeaderAuth sends fixed headers, e.g. an API key.
type HeaderAuth struct {
	Headers map[string]string
}

// Apply sets every configured header.
func (h HeaderAuth) Apply(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

// Type returns HeaderAuthType.
func (h HeaderAuth) Type() Type { return HeaderAuthType }

// BearerAuth sends a bearer token, e.g. an Earthdata user token.
type BearerAuth struct {
	Token string
}

// Apply sets the Authorization header.
func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns BearerAuthType.
func (b BearerAuth) Type() Type { return BearerAuthType }
