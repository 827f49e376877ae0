package srv

import "context"

// NewCleanup wraps a close function as a Service with no start phase.
// Registered first, it is shut down last under the reverse-order rule,
// which suits resources other services depend on, like the database
// handle.
func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}

type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup == nil {
		return nil
	}
	return c.cleanup()
}
