package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/lecternhq/lectern/pkg/log"
)

type AnthropicConfig struct {
	APIKey      string  `env:"ANTHROPIC_API_KEY,required,notEmpty"`
	Model       string  `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	MaxTokens   int     `env:"ANTHROPIC_MAX_TOKENS" envDefault:"800"`
	Temperature float64 `env:"ANTHROPIC_TEMPERATURE" envDefault:"0"`
}

func NewAnthropicConfig(ctx context.Context) *AnthropicConfig {
	c := &AnthropicConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Anthropic config")
	}
	return c
}
