package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/lecternhq/lectern/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"LECTERN_RUNTIME_PATH" envDefault:".lectern"`

	// HTTP API
	ListenAddr string `env:"LECTERN_LISTEN_ADDR" envDefault:":8000"`

	// Course documents folder scanned on ingest
	DocsPath string `env:"LECTERN_DOCS_PATH" envDefault:"docs"`

	// Conversation memory: number of past exchanges folded into the prompt
	MaxHistory int `env:"LECTERN_MAX_HISTORY" envDefault:"2"`

	// Tool-bearing rounds the agent may spend per query
	MaxToolRounds int `env:"LECTERN_MAX_TOOL_ROUNDS" envDefault:"2"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "lectern.db")
}
