package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBrowserClientSetsHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := NewBrowserClient(Config{})
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if gotUA != DefaultUserAgent {
		t.Fatalf("User-Agent = %q", gotUA)
	}
	if gotLang != DefaultAcceptLanguage {
		t.Fatalf("Accept-Language = %q", gotLang)
	}
	if c.Timeout != DefaultTimeout {
		t.Fatalf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
}

func TestBrowserClientKeepsCallerHeaders(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	t.Cleanup(srv.Close)

	c := NewBrowserClient(Config{Timeout: time.Second, UserAgent: "configured"})
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "explicit")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()
	if gotUA != "explicit" {
		t.Fatalf("User-Agent = %q, want explicit", gotUA)
	}
}

func TestCheckStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/film/1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	err = CheckStatus(resp)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("CheckStatus() = %v, want *StatusError", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Fatalf("StatusCode = %d", se.StatusCode)
	}
	if !strings.Contains(se.Error(), "/film/1") {
		t.Fatalf("Error() = %q, want url", se.Error())
	}
}
