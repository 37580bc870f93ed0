package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/jolmarket/listing-agent/agent/chat"
	contractx "github.com/jolmarket/listing-agent/agent/contract"
	"github.com/jolmarket/listing-agent/agent/executor"
	"github.com/jolmarket/listing-agent/agent/llm"
	"github.com/jolmarket/listing-agent/agent/planner"
	promptx "github.com/jolmarket/listing-agent/agent/prompt"
	toolx "github.com/jolmarket/listing-agent/agent/tool"
	"github.com/jolmarket/listing-agent/listing"
	"github.com/jolmarket/listing-agent/market"
	configx "github.com/jolmarket/listing-agent/pkg/config"
	_ "github.com/jolmarket/listing-agent/pkg/logger/autoload"
	openrouterx "github.com/jolmarket/listing-agent/pkg/openrouter"
	"github.com/jolmarket/listing-agent/server"
)

type AppConfig struct {
	Addr        string    `envconfig:"ADDR" default:":8000"`
	ChatMode    chat.Mode `envconfig:"CHAT_MODE" default:"plan"`
	DatabaseDSN string    `envconfig:"DATABASE_DSN"`
	SeedData    bool      `envconfig:"SEED_DATA" split_words:"true" default:"false"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llm.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	store := buildStore(ctx, appCfg)

	probeModel(ctx, llmCfg)

	prompts := promptx.LoadPromptSet()
	registry := toolx.New(store, market.NewTable())
	exec := executor.New(registry)

	svc, err := buildChatService(ctx, appCfg, llmCfg, store, exec, prompts)
	if err != nil {
		log.Fatal().Err(err).Msg("build chat service")
	}

	srv := &http.Server{
		Addr:              appCfg.Addr,
		Handler:           server.New(svc, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", appCfg.Addr).Str("mode", string(appCfg.ChatMode)).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

// buildStore prefers Postgres; without a DSN it falls back to the
// in-memory store so the agent runs without infrastructure.
func buildStore(ctx context.Context, cfg *AppConfig) listing.Store {
	if cfg.DatabaseDSN == "" {
		log.Info().Msg("no database dsn, using in-memory store")
		store := listing.NewMemStore()
		seedIfWanted(ctx, cfg, store)
		return store
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DatabaseDSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}

	store := listing.NewBunStore(db)
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("create schema")
	}
	seedIfWanted(ctx, cfg, store)
	return store
}

func seedIfWanted(ctx context.Context, cfg *AppConfig, store listing.Store) {
	if !cfg.SeedData {
		return
	}
	if err := listing.Seed(ctx, store); err != nil {
		log.Fatal().Err(err).Msg("seed listings")
	}
	log.Info().Msg("seeded sample listings")
}

// probeModel checks model availability at startup. Failures only warn;
// the planner degrades per turn when the model is unreachable.
func probeModel(ctx context.Context, cfg *llm.Config) {
	client := openrouterx.NewClient(cfg.OpenRouterFor(llm.RolePlanner))
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := openrouterx.VerifyModel(probeCtx, client, cfg.Model); err != nil {
		log.Warn().Err(err).Msg("model probe failed")
		return
	}
	log.Info().Str("model", cfg.Model).Msg("model available")
}

func buildChatService(
	ctx context.Context,
	appCfg *AppConfig,
	llmCfg *llm.Config,
	store listing.Store,
	exec *executor.Executor,
	prompts promptx.PromptSet,
) (*chat.Service, error) {
	var (
		structured *planner.Structured
		loop       *planner.ToolLoop
		err        error
	)

	switch appCfg.ChatMode {
	case chat.ModeToolLoop:
		assistantCfg := llmCfg.OpenRouterFor(llm.RoleAssistant)
		chatModel, buildErr := assistantCfg.New(ctx)
		if buildErr != nil {
			return nil, buildErr
		}
		loop, err = planner.NewToolLoop(chatModel, exec, prompts.Assistant)
		if err != nil {
			return nil, err
		}
	default:
		plannerCfg := llmCfg.OpenRouterFor(llm.RolePlanner)
		chatModel, buildErr := plannerCfg.New(ctx)
		if buildErr != nil {
			return nil, buildErr
		}
		structured, err = planner.NewStructured(ctx, chatModel, prompts.Planner)
		if err != nil {
			return nil, err
		}
	}

	var (
		plannerArg contractx.Planner
		loopArg    contractx.ToolLoopPlanner
	)
	if structured != nil {
		plannerArg = structured
	}
	if loop != nil {
		loopArg = loop
	}
	return chat.New(ctx, store, plannerArg, loopArg, exec, appCfg.ChatMode)
}
