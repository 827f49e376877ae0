package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/drambot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"DRAM_RUNTIME_PATH" envDefault:".drambot"`

	// Store backend: "file" keeps everything in a single JSON document,
	// "sqlite" uses a key-value table in the runtime database.
	StoreBackend string `env:"DRAM_STORE_BACKEND" envDefault:"file"`

	// Passphrase for credential obfuscation at rest. Empty falls back to
	// the built-in passphrase.
	StoreSecret string `env:"DRAM_STORE_SECRET" envDefault:""`

	// Chat request timeout. Requests past this deadline surface a timeout
	// message in the conversation instead of hanging the prompt.
	RequestTimeout time.Duration `env:"DRAM_REQUEST_TIMEOUT" envDefault:"60s"`

	// Context Management
	ContextWindowSize int `env:"DRAM_CONTEXT_WINDOW_SIZE" envDefault:"30"`
	PromptTokenBudget int `env:"DRAM_PROMPT_TOKEN_BUDGET" envDefault:"3000"`
	PromptRecordLimit int `env:"DRAM_PROMPT_RECORD_LIMIT" envDefault:"8"`

	// ExportPath is where /export drops transcript files.
	ExportPath string `env:"DRAM_EXPORT_PATH" envDefault:"."`
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

func (c AppConfig) GetStorePath() string {
	return filepath.Join(c.RuntimePath, "store.json")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "drambot.db")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}
