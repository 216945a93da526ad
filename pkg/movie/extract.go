package movie

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Unknown stands in for a field the page does not expose.
const Unknown = "Unknown"

// Extractor pulls one field's raw text out of a document; "" means not found.
type Extractor func(doc *goquery.Document) string

// SelectorExtractor reads the trimmed text of the first match of selector.
func SelectorExtractor(selector string) Extractor {
	return func(doc *goquery.Document) string {
		return normSpace(doc.Find(selector).First().Text())
	}
}

// FirstOf tries extractors in order and returns the first non-empty value.
func FirstOf(doc *goquery.Document, extractors []Extractor) string {
	for _, extract := range extractors {
		if v := extract(doc); v != "" {
			return v
		}
	}
	return ""
}

// Ordered from most to least specific against csfd.cz film pages.
var (
	TitleExtractors = []Extractor{
		SelectorExtractor("h1"),
	}
	GenreExtractors = []Extractor{
		SelectorExtractor(".film-info-content .genres"),
		SelectorExtractor("div.genres"),
		SelectorExtractor(".genres"),
	}
	RatingExtractors = []Extractor{
		SelectorExtractor(".film-rating-average"),
		SelectorExtractor(".rating-average"),
		SelectorExtractor(".average"),
	}
)

// Extract builds a Record from a parsed page. Each field degrades to Unknown on its own.
func Extract(doc *goquery.Document, pageURL string) Record {
	return Record{
		Name:   orUnknown(FirstOf(doc, TitleExtractors)),
		Genre:  orUnknown(FirstOf(doc, GenreExtractors)),
		Rating: NormalizeRating(FirstOf(doc, RatingExtractors)),
		URL:    pageURL,
	}
}

// NormalizeRating leaves exactly one trailing "%", or returns Unknown for empty input.
func NormalizeRating(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.TrimSpace(strings.TrimRight(v, "%"))
	if v == "" {
		return Unknown
	}
	return v + "%"
}

func orUnknown(v string) string {
	if v == "" {
		return Unknown
	}
	return v
}

func normSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
