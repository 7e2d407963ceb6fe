package config

import (
	"os"

	"github.com/glorpus-work/corsget/pkg/auth"
	"github.com/glorpus-work/corsget/pkg/errors"
)

// AuthConfig holds the archive credentials. At most one scheme may be set.
// Values are expanded against the environment, so secrets can stay out of the
// file: password: ${EARTHDATA_PASSWORD}.
type AuthConfig struct {
	BasicAuth  *BasicAuth  `yaml:"basic,omitempty"`
	HeaderAuth *HeaderAuth `yaml:"header,omitempty"`
	BearerAuth *BearerAuth `yaml:"bearer,omitempty"`
}

// BasicAuth holds configuration for HTTP Basic Authentication.
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HeaderAuth holds configuration for custom header-based authentication.
type HeaderAuth struct {
	Headers map[string]string `yaml:"headers"`
}

// BearerAuth holds configuration for Bearer token authentication.
type BearerAuth struct {
	Token string `yaml:"token"`
}

// ToAuthenticator converts the BasicAuth configuration to an Authenticator.
func (b *BasicAuth) ToAuthenticator() auth.Authenticator {
	return auth.BasicAuth{
		Username: os.ExpandEnv(b.Username),
		Password: os.ExpandEnv(b.Password),
	}
}

// ToAuthenticator converts the HeaderAuth configuration to an Authenticator.
func (h *HeaderAuth) ToAuthenticator() auth.Authenticator {
	headers := make(map[string]string, len(h.Headers))
	for k, v := range h.Headers {
		headers[k] = os.ExpandEnv(v)
	}
	return auth.HeaderAuth{Headers: headers}
}

// ToAuthenticator converts the BearerAuth configuration to an Authenticator.
func (b *BearerAuth) ToAuthenticator() auth.Authenticator {
	return auth.BearerAuth{Token: os.ExpandEnv(b.Token)}
}

func (a *AuthConfig) validate() error {
	if a == nil {
		return nil
	}
	set := 0
	for _, configured := range []bool{a.BasicAuth != nil, a.HeaderAuth != nil, a.BearerAuth != nil} {
		if configured {
			set++
		}
	}
	if set > 1 {
		return errors.Configurationf("archive.auth: only one of basic, header, bearer may be set")
	}
	return nil
}

// Authenticator returns the configured archive credentials, or nil when the
// archive is public.
func (c *Config) Authenticator() auth.Authenticator {
	a := c.Archive.Auth
	if a == nil {
		return nil
	}
	switch {
	case a.BasicAuth != nil:
		return a.BasicAuth.ToAuthenticator()
	case a.HeaderAuth != nil:
		return a.HeaderAuth.ToAuthenticator()
	case a.BearerAuth != nil:
		return a.BearerAuth.ToAuthenticator()
	default:
		return nil
	}
}
