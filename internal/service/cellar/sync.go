package cellar

import (
	"context"
	"time"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/pkg/log"
)

const (
	defaultSyncInterval = 15 * time.Minute
	defaultSyncLimit    = 10
)

// ReviewLister is the slice of the remote client the syncer needs.
type ReviewLister interface {
	ListReviews(ctx context.Context, limit int) ([]core.RemoteHighlight, error)
}

// Syncer periodically refreshes the engine's community highlights from a
// DramBot server. A failed fetch is logged and skipped; the previous
// cache stays in place and nothing else is touched.
type Syncer struct {
	engine   *Engine
	client   ReviewLister
	Interval time.Duration
	Limit    int
}

func NewSyncer(engine *Engine, client ReviewLister) *Syncer {
	return &Syncer{
		engine:   engine,
		client:   client,
		Interval: defaultSyncInterval,
		Limit:    defaultSyncLimit,
	}
}

func (s *Syncer) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Dur("interval", s.Interval).Msg("starting cellar sync")

	// Prime once so the first prompt already carries remote context.
	s.refresh(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Syncer) Shutdown(ctx context.Context) error {
	return nil
}

func (s *Syncer) refresh(ctx context.Context) {
	highlights, err := s.client.ListReviews(ctx, s.Limit)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("review sync failed")
		return
	}
	s.engine.SetRemote(highlights)
	log.FromCtx(ctx).Debug().Int("count", len(highlights)).Msg("remote highlights refreshed")
}
