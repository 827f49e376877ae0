package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sandevgo/drambot/internal/core"
)

// Backend keeps the whole store in a single JSON document on disk, one
// entry per key. Values are UTF-8 text (JSON documents, or base64 when the
// store obfuscates them), so the file stays inspectable with a pager.
type Backend struct {
	path string
	mu   sync.RWMutex
	data map[string]string
}

var _ core.KV = (*Backend)(nil)

// New opens the store file at path, creating an empty store when the file
// does not exist yet.
func New(path string) (*Backend, error) {
	b := &Backend{
		path: path,
		data: make(map[string]string),
	}
	if err := b.load(); err != nil {
		return nil, fmt.Errorf("failed to load store file %s: %w", path, err)
	}
	return b, nil
}

func (b *Backend) load() error {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, &b.data)
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data[key] = string(value)
	return b.save()
}

func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.data[key]; !ok {
		return nil
	}
	delete(b.data, key)
	return b.save()
}

// save writes the document through a temp file so a crash mid-write never
// leaves a truncated store behind.
func (b *Backend) save() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tempPath := b.path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b.data); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode store: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp store file: %w", err)
	}

	if err := os.Rename(tempPath, b.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
