// Package webpage reads an arbitrary page (typically a recipe) and returns its main content as Markdown.
package webpage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/tanpawarit/spark/pkg/httpx"
)

const (
	maxPageSizeBytes   = 5 << 20
	defaultMaxContents = 12000
)

var blankLines = regexp.MustCompile(`\n{3,}`)

type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Markdown  string `json:"markdown"`
	Truncated bool   `json:"truncated,omitempty"`
}

type Reader struct {
	client      *http.Client
	maxContents int
}

type Option func(*Reader)

func WithHTTPClient(client *http.Client) Option {
	return func(r *Reader) {
		if client != nil {
			r.client = client
		}
	}
}

// WithMaxContents caps the Markdown length in runes.
func WithMaxContents(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxContents = n
		}
	}
}

func NewReader(opts ...Option) *Reader {
	r := &Reader{maxContents: defaultMaxContents}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.client == nil {
		r.client = httpx.NewBrowserClient(httpx.Config{})
	}
	return r
}

func (r *Reader) Read(ctx context.Context, rawURL string) (Page, error) {
	parsed, err := url.ParseRequestURI(strings.TrimSpace(rawURL))
	if err != nil {
		return Page{}, fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Page{}, errors.New("only http and https urls are supported")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return Page{}, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()
	if err := httpx.CheckStatus(resp); err != nil {
		return Page{}, err
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSizeBytes))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("head title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	markdown, err := htmltomarkdown.ConvertString(
		mainContent(doc),
		converter.WithDomain(parsed.Scheme+"://"+parsed.Host),
	)
	if err != nil {
		return Page{}, fmt.Errorf("convert to markdown: %w", err)
	}

	markdown, truncated := truncateRunes(cleanMarkdown(markdown), r.maxContents)
	return Page{
		URL:       parsed.String(),
		Title:     title,
		Markdown:  markdown,
		Truncated: truncated,
	}, nil
}

func mainContent(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, iframe, form").Remove()

	for _, selector := range []string{"article", "main", "[itemtype*='Recipe']", "#content", ".content", "body"} {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if h, err := sel.Html(); err == nil && strings.TrimSpace(h) != "" {
			return h
		}
	}
	h, _ := doc.Html()
	return h
}

func cleanMarkdown(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func truncateRunes(s string, limit int) (string, bool) {
	if limit <= 0 {
		return s, false
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}
	return string(runes[:limit]), true
}
