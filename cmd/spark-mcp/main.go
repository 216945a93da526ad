// spark-mcp serves the stateless S.P.A.R.K tools over MCP on stdio.
//
// Usage:
//
//	spark-mcp [-env path/to/.env]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	toolx "github.com/tanpawarit/spark/agent/tool"
	configx "github.com/tanpawarit/spark/pkg/config"
	"github.com/tanpawarit/spark/pkg/httpx"
	logx "github.com/tanpawarit/spark/pkg/logger"
	"github.com/tanpawarit/spark/pkg/movie"
	"github.com/tanpawarit/spark/pkg/nameday"
	"github.com/tanpawarit/spark/pkg/webpage"
)

const Version = "0.1.0"

type Config struct {
	NameDaysPath string `split_words:"true" default:"data/name_days.csv"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logCfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		return fmt.Errorf("load log config: %w", err)
	}
	logCfg.Output = os.Stderr
	logx.Init(*logCfg)

	cfg, err := configx.New[Config]("APP")
	if err != nil {
		return fmt.Errorf("load app config: %w", err)
	}
	httpCfg, err := configx.New[httpx.Config]("HTTP")
	if err != nil {
		return fmt.Errorf("load http config: %w", err)
	}

	s, names, err := newServer(*cfg, *httpCfg)
	if err != nil {
		return err
	}
	log.Info().Strs("tools", names).Msg("serving mcp tools on stdio")
	return server.ServeStdio(s)
}

func newServer(cfg Config, httpCfg httpx.Config) (*server.MCPServer, []string, error) {
	catalog, err := nameday.Load(cfg.NameDaysPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load name days: %w", err)
	}

	httpClient := httpx.NewBrowserClient(httpCfg)
	registry, err := toolx.NewDefaultRegistry(toolx.Deps{
		Clock:    time.Now,
		NameDays: catalog,
		Movies:   movie.NewFetcher(movie.WithHTTPClient(httpClient)),
		Pages:    webpage.NewReader(webpage.WithHTTPClient(httpClient)),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build tool registry: %w", err)
	}

	s := server.NewMCPServer(
		"spark",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	log.Debug().Int("name_days", catalog.Len()).Str("path", cfg.NameDaysPath).Msg("name days loaded")
	return s, registry.RegisterMCP(s), nil
}
