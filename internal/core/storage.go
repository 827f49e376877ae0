package core

import "context"

// KV is the raw key-value medium under the typed store. Implementations are
// a local JSON file and a SQLite table; both are small-capacity local media
// with no external latency worth cancelling, so operations either complete
// or fail fast.
type KV interface {
	// Get returns the stored bytes and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
