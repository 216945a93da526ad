package tool

import (
	"context"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/spark/agent/contract"
	"github.com/tanpawarit/spark/pkg/movie"
	"github.com/tanpawarit/spark/pkg/webpage"
)

const (
	ToolMovieInformation = "get_movie_information"
	ToolFetchWebpage     = "fetch_webpage"
)

type MovieFetcher interface {
	Fetch(ctx context.Context, movieURL string) (string, *movie.Record)
}

type PageReader interface {
	Read(ctx context.Context, url string) (webpage.Page, error)
}

// MovieResult keeps the display text even when extraction failed.
type MovieResult struct {
	Text   string        `json:"text"`
	Record *movie.Record `json:"record,omitempty"`
}

func MovieTool(fetcher MovieFetcher, agents ...contractx.AgentType) Spec {
	return Spec{
		Name:        ToolMovieInformation,
		Description: "Fetch a movie page (for example a csfd.cz link) and return its title, genre and rating.",
		Params: []Param{
			{Name: "url", Type: schema.String, Desc: "Movie page URL", Required: true},
		},
		Agents: agents,
		Call: func(ctx context.Context, args Args) (any, error) {
			url, err := args.String("url")
			if err != nil {
				return nil, err
			}
			text, rec := fetcher.Fetch(ctx, url)
			return MovieResult{Text: text, Record: rec}, nil
		},
	}
}

func WebpageTool(reader PageReader, agents ...contractx.AgentType) Spec {
	return Spec{
		Name:        ToolFetchWebpage,
		Description: "Download a web page (for example a recipe link) and return its main content as Markdown.",
		Params: []Param{
			{Name: "url", Type: schema.String, Desc: "Page URL", Required: true},
		},
		Agents: agents,
		Call: func(ctx context.Context, args Args) (any, error) {
			url, err := args.String("url")
			if err != nil {
				return nil, err
			}
			return reader.Read(ctx, url)
		},
	}
}
