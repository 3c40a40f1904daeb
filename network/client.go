// Package network provides the HTTP client shared by the metadata lookups (AniSkip, release checks).
package network

import (
	"net/http"
	"time"

	"github.com/marquee-player/marquee/constant"
)

// UserAgent identifies the player to the services it queries.
var UserAgent = constant.Marquee + "/" + constant.Version

// Client is shared across the application. Lookups are small JSON documents, so timeouts are short.
var Client = &http.Client{
	Timeout:   15 * time.Second,
	Transport: &userAgentTransport{base: newTransport()},
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 10 * time.Second
	return t
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return t.base.RoundTrip(req)
}
