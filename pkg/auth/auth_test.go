package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/corsget/pkg/auth"
)

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://cddis.example/archive/gnss/data/daily/2025/101/25d/corv1010.25d.gz", http.NoBody)
	require.NoError(t, err)
	return req
}

func TestBasicAuth(t *testing.T) {
	req := newRequest(t)
	a := auth.BasicAuth{Username: "user", Password: "pass"}

	require.NoError(t, a.Apply(req))
	assert.Equal(t, "Basic dXNlcjpwYXNz", req.Header.Get("Authorization"))
	assert.Equal(t, auth.BasicAuthType, a.Type())
}

func TestHeaderAuth(t *testing.T) {
	req := newRequest(t)
	a := auth.HeaderAuth{Headers: map[string]string{"X-API-Key": "k1", "X-Client-ID": "c1"}}

	require.NoError(t, a.Apply(req))
	assert.Equal(t, "k1", req.Header.Get("X-Api-Key"))
	assert.Equal(t, "c1", req.Header.Get("X-Client-Id"))
	assert.Equal(t, auth.HeaderAuthType, a.Type())
}

func TestBearerAuth(t *testing.T) {
	req := newRequest(t)
	a := auth.BearerAuth{Token: "tok"}

	require.NoError(t, a.Apply(req))
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, auth.BearerAuthType, a.Type())
}
