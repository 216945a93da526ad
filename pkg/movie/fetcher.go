// Package movie fetches film pages and extracts title, genre and rating.
package movie

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/spark/pkg/httpx"
)

const maxPageSizeBytes = 5 << 20

type Record struct {
	Name   string `json:"name"`
	Genre  string `json:"genre"`
	Rating string `json:"rating"`
	URL    string `json:"url"`
}

// Text renders the four-line summary shown to the user.
func (r Record) Text() string {
	return fmt.Sprintf("Name: %s\nGenre: %s\nRating: %s\nURL: %s", r.Name, r.Genre, r.Rating, r.URL)
}

type Fetcher struct {
	client *http.Client
}

type Option func(*Fetcher)

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.client == nil {
		f.client = httpx.NewBrowserClient(httpx.Config{})
	}
	return f
}

// Fetch issues one GET for movieURL. Failures are reported as display text with a nil record.
func (f *Fetcher) Fetch(ctx context.Context, movieURL string) (string, *Record) {
	body, pageURL, err := f.get(ctx, movieURL)
	if err != nil {
		log.Warn().Err(err).Str("url", movieURL).Msg("movie fetch failed")
		return fmt.Sprintf("Error fetching movie information: %v", err), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("url", movieURL).Msg("movie page parse failed")
		return fmt.Sprintf("Error parsing movie information: %v", err), nil
	}

	rec := Extract(doc, pageURL)
	return rec.Text(), &rec
}

func (f *Fetcher) get(ctx context.Context, movieURL string) (string, string, error) {
	movieURL = strings.TrimSpace(movieURL)
	if movieURL == "" {
		return "", "", fmt.Errorf("movie url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, movieURL, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if err := httpx.CheckStatus(resp); err != nil {
		return "", "", err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSizeBytes))
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}
	return string(raw), movieURL, nil
}
