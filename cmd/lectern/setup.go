package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/lecternhq/lectern/internal/config"
	"github.com/lecternhq/lectern/internal/providers/llm"
	"github.com/lecternhq/lectern/internal/providers/rag"
	"github.com/lecternhq/lectern/internal/search"
	"github.com/lecternhq/lectern/internal/service/agent"
	"github.com/lecternhq/lectern/internal/service/assistant"
	"github.com/lecternhq/lectern/internal/service/session"
	"github.com/lecternhq/lectern/internal/storage/sqlite"
	"github.com/lecternhq/lectern/internal/tools"
	"github.com/lecternhq/lectern/internal/transport/httpapi"
	"github.com/lecternhq/lectern/pkg/log"
	"github.com/lecternhq/lectern/pkg/srv"
)

// deps is the shared wiring both subcommands build on: configuration,
// storage and the retrieval backend. The serve command layers the model,
// tools and transport on top.
type deps struct {
	appCfg   *config.AppConfig
	ragCfg   *config.RAGConfig
	db       *sql.DB
	store    *search.Store
	services []srv.Service
}

func NewDeps(ctx context.Context) *deps {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	ragCfg := config.NewRAGConfig(ctx)

	d := &deps{appCfg: appCfg, ragCfg: ragCfg}

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	d.db = db
	d.services = append(d.services, srv.NewCleanup(db.Close))

	// 3. Embedder + retrieval backend
	embedder, err := rag.NewEmbedder(ragCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}
	d.store = search.NewStore(ragCfg, sqlite.NewCatalogRepo(db), sqlite.NewChunksRepo(db), embedder)

	return d
}

// NewServices wires the query stack on top of the shared deps and returns
// everything the serve command has to start.
func NewServices(ctx context.Context, d *deps) []srv.Service {
	logger := log.FromCtx(ctx)

	anthropicCfg := config.NewAnthropicConfig(ctx)

	// Tools
	manager := tools.NewManager()
	if err := manager.Register(tools.NewSearchCourse(d.store)); err != nil {
		logger.Fatal().Err(err).Msg("failed to register search tool")
	}
	if err := manager.Register(tools.NewCourseOutline(d.store)); err != nil {
		logger.Fatal().Err(err).Msg("failed to register outline tool")
	}

	// Model + orchestration
	ai := llm.NewAnthropic(anthropicCfg)
	ag := agent.NewAgent(ai, d.appCfg.MaxToolRounds)
	sessions := session.NewManager(sqlite.NewMessagesRepo(d.db), d.appCfg.MaxHistory)
	svc := assistant.New(ag, sessions, manager, d.store)

	// Transport
	services := append([]srv.Service{}, d.services...)
	services = append(services, httpapi.NewServer(d.appCfg.ListenAddr, svc))
	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
