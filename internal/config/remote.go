package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/drambot/pkg/log"
)

// RemoteConfig points at a DramBot server. The same server backs the
// relay chat provider and the community review sync.
type RemoteConfig struct {
	BaseURL string `env:"DRAM_REMOTE_URL" envDefault:""`
	Token   string `env:"DRAM_REMOTE_TOKEN" envDefault:""`

	// Review sync worker.
	SyncEnabled  bool          `env:"DRAM_SYNC_ENABLED" envDefault:"false"`
	SyncInterval time.Duration `env:"DRAM_SYNC_INTERVAL" envDefault:"15m"`
	SyncLimit    int           `env:"DRAM_SYNC_LIMIT" envDefault:"10"`
}

func NewRemoteConfig(ctx context.Context) *RemoteConfig {
	c := &RemoteConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Remote config")
	}
	return c
}
