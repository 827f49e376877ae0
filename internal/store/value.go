package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/pkg/log"
)

// entry is the on-disk envelope around every stored value.
type entry struct {
	Version int             `json:"version"`
	Value   json.RawMessage `json:"value"`
}

// Value is a typed handle bound to one key. Reads never fail: before
// hydration completes, and whenever the stored entry is missing or
// malformed, Get serves the declared default and the failure (if any) is
// recorded on the handle. Writes are refused until hydration completes so
// a default can never clobber state that simply has not been read yet.
type Value[T any] struct {
	store     *Store
	key       string
	def       T
	sensitive bool

	mu       sync.RWMutex
	cur      T
	hydrated bool
	err      error

	ready chan struct{}
}

// NewValue creates a handle for key with the given default and starts
// hydrating it from the underlying medium in the background.
func NewValue[T any](ctx context.Context, s *Store, key string, def T, opts ...Option) *Value[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	v := &Value[T]{
		store:     s,
		key:       key,
		def:       def,
		sensitive: o.sensitive,
		cur:       def,
		ready:     make(chan struct{}),
	}
	go v.hydrate(ctx)
	return v
}

func (v *Value[T]) hydrate(ctx context.Context) {
	defer close(v.ready)

	raw, ok, err := v.store.kv.Get(ctx, v.key)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.hydrated = true

	if err != nil {
		v.err = &core.StorageError{Op: "read", Key: v.key, Err: err}
		log.FromCtx(ctx).Warn().Err(err).Str("key", v.key).Msg("store read failed, serving default")
		return
	}
	if !ok {
		log.FromCtx(ctx).Debug().Str("key", v.key).Bool("exists", false).Msg("store value hydrated")
		return
	}

	val, err := v.decode(raw)
	if err != nil {
		v.err = &core.StorageError{Op: "read", Key: v.key, Err: err}
		log.FromCtx(ctx).Warn().Err(err).Str("key", v.key).Msg("store entry malformed, serving default")
		return
	}

	v.cur = val
	log.FromCtx(ctx).Debug().Str("key", v.key).Bool("exists", true).Msg("store value hydrated")
}

// Get returns the current value. Safe to call at any time; before
// hydration it returns the default.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cur
}

// Set writes val through to the medium. The in-memory value is updated
// even when the disk write fails, so a broken medium degrades to
// session-only persistence rather than a dead handle.
func (v *Value[T]) Set(ctx context.Context, val T) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.hydrated {
		return core.ErrNotHydrated
	}

	raw, err := v.encode(val)
	if err != nil {
		return &core.StorageError{Op: "write", Key: v.key, Err: err}
	}

	v.cur = val
	if err := v.store.kv.Set(ctx, v.key, raw); err != nil {
		werr := &core.StorageError{Op: "write", Key: v.key, Err: err}
		v.err = werr
		return werr
	}
	v.err = nil
	return nil
}

// Clear deletes the key and resets the in-memory value to the default.
func (v *Value[T]) Clear(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.hydrated {
		return core.ErrNotHydrated
	}

	v.cur = v.def
	if err := v.store.kv.Delete(ctx, v.key); err != nil {
		werr := &core.StorageError{Op: "clear", Key: v.key, Err: err}
		v.err = werr
		return werr
	}
	v.err = nil
	return nil
}

// Hydrated reports whether the initial read has completed.
func (v *Value[T]) Hydrated() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.hydrated
}

// Wait blocks until hydration completes or ctx is done.
func (v *Value[T]) Wait(ctx context.Context) error {
	select {
	case <-v.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the last soft failure recorded on the handle, nil when the
// last operation succeeded.
func (v *Value[T]) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

func (v *Value[T]) encode(val T) ([]byte, error) {
	inner, err := json.Marshal(val)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	raw, err := json.Marshal(entry{Version: schemaVersion, Value: inner})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}
	if v.sensitive {
		raw = []byte(Obfuscate(raw, v.store.passphrase))
	}
	return raw, nil
}

func (v *Value[T]) decode(raw []byte) (T, error) {
	var zero T

	if v.sensitive {
		plain, err := Deobfuscate(string(raw), v.store.passphrase)
		if err != nil {
			return zero, err
		}
		raw = plain
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return zero, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	if e.Version != schemaVersion {
		return zero, fmt.Errorf("unsupported entry version %d", e.Version)
	}

	var val T
	if err := json.Unmarshal(e.Value, &val); err != nil {
		return zero, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return val, nil
}
