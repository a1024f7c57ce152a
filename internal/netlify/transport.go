package netlify

import (
	"fmt"
	"net/http"
	"strings"
)

// authTransport attaches the fixed credential and default headers to every
// outbound request. The credential is captured once at construction.
type authTransport struct {
	base       http.RoundTripper
	authHeader string
	userAgent  string
}

func newAuthTransport(base http.RoundTripper, token, userAgent string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{
		base:       base,
		authHeader: "Bearer " + token,
		userAgent:  userAgent,
	}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("netlify: nil request")
	}

	// RoundTrippers must not mutate the caller's request.
	req2 := req.Clone(req.Context())
	req2.Header.Set("Authorization", t.authHeader)
	req2.Header.Set("Accept", "application/json")
	if strings.TrimSpace(t.userAgent) != "" {
		req2.Header.Set("User-Agent", t.userAgent)
	}
	if req2.Body != nil && req2.Body != http.NoBody && req2.Header.Get("Content-Type") == "" {
		req2.Header.Set("Content-Type", "application/json")
	}
	return t.base.RoundTrip(req2)
}
