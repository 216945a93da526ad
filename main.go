package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	memberx "github.com/tanpawarit/spark/agent/agents/member"
	teamx "github.com/tanpawarit/spark/agent/agents/team"
	contractx "github.com/tanpawarit/spark/agent/contract"
	llmx "github.com/tanpawarit/spark/agent/llm"
	"github.com/tanpawarit/spark/agent/memory"
	promptx "github.com/tanpawarit/spark/agent/prompt"
	statex "github.com/tanpawarit/spark/agent/state"
	toolx "github.com/tanpawarit/spark/agent/tool"
	configx "github.com/tanpawarit/spark/pkg/config"
	"github.com/tanpawarit/spark/pkg/httpx"
	_ "github.com/tanpawarit/spark/pkg/logger/autoload"
	"github.com/tanpawarit/spark/pkg/movie"
	"github.com/tanpawarit/spark/pkg/nameday"
	openrouterx "github.com/tanpawarit/spark/pkg/openrouter"
	"github.com/tanpawarit/spark/pkg/telegram"
	"github.com/tanpawarit/spark/pkg/webpage"
)

type AppConfig struct {
	NameDaysPath string `split_words:"true" default:"data/name_days.csv"`
	ChannelType  string `split_words:"true" default:"telegram"`
	HistorySize  int    `split_words:"true" default:"3"`
}

type StateConfig struct {
	Backend string `default:"sqlite"`
	Path    string `default:"data/spark_agents_memory.db"`

	// PruneAfter drops SQLite sessions idle for longer at startup. Zero keeps them.
	PruneAfter time.Duration `split_words:"true" default:"0"`
}

func (c StateConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "sqlite", "memory", "upstash":
		return nil
	default:
		return fmt.Errorf("unsupported state backend %q", c.Backend)
	}
}

func main() {
	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	memoryCfg := configx.MustNew[memory.Config]("MEMORY")
	stateCfg := configx.MustNew[StateConfig]("STATE")
	httpCfg := configx.MustNew[httpx.Config]("HTTP")
	telegramCfg := configx.MustNew[telegram.Config]("TELEGRAM")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := nameday.Load(appCfg.NameDaysPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", appCfg.NameDaysPath).Msg("load name days")
	}
	log.Info().Int("days", catalog.Len()).Str("path", appCfg.NameDaysPath).Msg("name days loaded")

	memories, err := memory.Open(ctx, *memoryCfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", memoryCfg.Driver).Msg("open memory store")
	}
	defer memories.Close()

	httpClient := httpx.NewBrowserClient(*httpCfg)
	tools, err := toolx.NewDefaultRegistry(toolx.Deps{
		Clock:    time.Now,
		NameDays: catalog,
		Movies:   movie.NewFetcher(movie.WithHTTPClient(httpClient)),
		Pages:    webpage.NewReader(webpage.WithHTTPClient(httpClient)),
		Memory:   memories,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build tool registry")
	}

	models, err := memberx.NewRegistry(ctx, *llmCfg, memberx.Options{
		Prompts:  promptx.LoadPromptSet(),
		Tools:    tools,
		Memories: memory.NewRecaller(memories, memoryCfg.RecallLimit),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build agent registry")
	}

	store, closeStore, err := newStateStore(ctx, *stateCfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", stateCfg.Backend).Msg("open state store")
	}
	defer closeStore()

	var summarizer contractx.Summarizer
	if llmCfg.SessionSummaries {
		client := openrouterx.NewClient(llmCfg.OpenRouterFor(contractx.AgentTypeTeam))
		summarizer = llmx.NewSessionSummarizer(client, llmCfg.SummaryModelName())
	}

	team, err := teamx.New(store, models, summarizer, teamx.Config{
		ChannelType: appCfg.ChannelType,
		HistorySize: appCfg.HistorySize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build team")
	}

	bot, err := telegram.New(*telegramCfg, func(ctx context.Context, userID string, text string) (string, error) {
		resp, err := team.Run(ctx, text, userID)
		if err != nil {
			return "", err
		}
		log.Info().Str("user_id", userID).Str("member", string(resp.Member)).Msg("message answered")
		return resp.Content, nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("start telegram bot")
	}

	log.Info().Msg("S.P.A.R.K is listening")
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("telegram bot stopped")
	}
}

func newStateStore(ctx context.Context, cfg StateConfig) (statex.Store, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "memory":
		return statex.NewMemoryStore(), noop, nil
	case "upstash":
		redisCfg, err := configx.New[statex.UpstashConfig]("UPSTASH_REDIS")
		if err != nil {
			return nil, noop, err
		}
		store, err := statex.NewUpstashStore(*redisCfg)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		store, err := statex.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		if cfg.PruneAfter > 0 {
			n, err := store.Prune(ctx, time.Now().Add(-cfg.PruneAfter))
			if err != nil {
				store.Close()
				return nil, noop, err
			}
			log.Info().Int64("sessions", n).Dur("idle", cfg.PruneAfter).Msg("pruned idle sessions")
		}
		return store, func() { store.Close() }, nil
	}
}
