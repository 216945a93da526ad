// Package httpx builds HTTP clients that look like a desktop browser to page scrapers.
package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultTimeout        = 10 * time.Second
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "cs-CZ,cs;q=0.9,en-US;q=0.8,en;q=0.7"
	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Transport sets browser headers on every request that does not carry its own.
// It never retries.
type Transport struct {
	Base http.RoundTripper

	UserAgent      string
	AcceptLanguage string
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	r := req.Clone(req.Context())
	setDefault(r.Header, "User-Agent", t.UserAgent, DefaultUserAgent)
	setDefault(r.Header, "Accept-Language", t.AcceptLanguage, DefaultAcceptLanguage)
	setDefault(r.Header, "Accept", "", DefaultAccept)
	return base.RoundTrip(r)
}

func setDefault(h http.Header, key, value, fallback string) {
	if h.Get(key) != "" {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	h.Set(key, value)
}

type Config struct {
	Timeout        time.Duration `split_words:"true" default:"10s"`
	UserAgent      string        `split_words:"true"`
	AcceptLanguage string        `split_words:"true"`
}

// NewBrowserClient returns a client with a total timeout and browser headers.
func NewBrowserClient(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &Transport{
			Base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
			},
			UserAgent:      cfg.UserAgent,
			AcceptLanguage: cfg.AcceptLanguage,
		},
	}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d %s for url: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// CheckStatus returns a *StatusError for non-2xx responses.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		u := ""
		if resp.Request != nil && resp.Request.URL != nil {
			u = resp.Request.URL.String()
		}
		return &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return nil
}
