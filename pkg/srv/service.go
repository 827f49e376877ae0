package srv

import (
	"context"

	"github.com/sandevgo/drambot/pkg/log"
)

// Service is anything with a lifecycle tied to the process: the chat
// transport, the review sync worker, storage teardown.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches every service on its own goroutine. A start
// error is fatal: the process is useless with a dead transport.
func StartServices(ctx context.Context, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func() {
			if err := service.Start(ctx); err != nil {
				logger.Fatal().Err(err).Msgf("%T failed to start", service)
			}
		}()
	}
}

// ShutdownServices blocks until ctx is done, then shuts services down
// in reverse registration order, so the transport lets go of the store
// before the database closes underneath it.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	logger := log.FromCtx(ctx)
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}
}
