package settings

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/storage/file"
	"github.com/sandevgo/drambot/internal/storage/sqlite"
	"github.com/sandevgo/drambot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
	gate chan struct{}
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func newTestManager(t *testing.T, kv core.KV) *Manager {
	t.Helper()
	m := NewManager(context.Background(), store.New(kv, "test"), "https://dram.example")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Wait(ctx))
	return m
}

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }

func provPtr(p core.Provider) *core.Provider { return &p }

func TestManager_StartsFromDefaults(t *testing.T) {
	m := newTestManager(t, newMemKV())
	assert.Equal(t, Defaults(), m.Current())

	ok, errs := m.Validate()
	assert.True(t, ok, "defaults should validate: %v", errs)
	assert.False(t, m.Ready(), "no credential yet")
}

func TestManager_UpdateClampsAndTrims(t *testing.T) {
	tests := []struct {
		name  string
		patch Patch
		check func(t *testing.T, s Settings)
	}{
		{
			name:  "temperature clamped high",
			patch: Patch{Temperature: f64Ptr(3.5)},
			check: func(t *testing.T, s Settings) { assert.Equal(t, 2.0, s.Temperature) },
		},
		{
			name:  "temperature clamped low",
			patch: Patch{Temperature: f64Ptr(-0.3)},
			check: func(t *testing.T, s Settings) { assert.Equal(t, 0.0, s.Temperature) },
		},
		{
			name:  "max tokens clamped high",
			patch: Patch{MaxTokens: intPtr(99999)},
			check: func(t *testing.T, s Settings) { assert.Equal(t, 4000, s.MaxTokens) },
		},
		{
			name:  "max tokens clamped low",
			patch: Patch{MaxTokens: intPtr(0)},
			check: func(t *testing.T, s Settings) { assert.Equal(t, 1, s.MaxTokens) },
		},
		{
			name:  "credential trimmed",
			patch: Patch{Credential: strPtr("  sk-abc  \n")},
			check: func(t *testing.T, s Settings) { assert.Equal(t, "sk-abc", s.Credential) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t, newMemKV())
			s, err := m.Update(context.Background(), tt.patch)
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestManager_UpdateRejectsUnknownProvider(t *testing.T) {
	m := newTestManager(t, newMemKV())

	_, err := m.Update(context.Background(), Patch{Provider: provPtr("badger")})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "provider", verr.Field)

	// Nothing changed.
	assert.Equal(t, Defaults(), m.Current())
}

func TestManager_PartialUpdateLeavesOtherFields(t *testing.T) {
	m := newTestManager(t, newMemKV())
	ctx := context.Background()

	_, err := m.Update(ctx, Patch{Credential: strPtr("sk-first"), Temperature: f64Ptr(1.2)})
	require.NoError(t, err)

	s, err := m.Update(ctx, Patch{Provider: provPtr(core.ProviderGemini)})
	require.NoError(t, err)

	assert.Equal(t, core.ProviderGemini, s.Provider)
	assert.Equal(t, "sk-first", s.Credential)
	assert.Equal(t, 1.2, s.Temperature)
}

func TestManager_ReadyRequiresCredential(t *testing.T) {
	m := newTestManager(t, newMemKV())
	ctx := context.Background()

	assert.False(t, m.Ready())

	_, err := m.Update(ctx, Patch{Credential: strPtr("sk-ready")})
	require.NoError(t, err)
	assert.True(t, m.Ready())

	_, err = m.Update(ctx, Patch{Credential: strPtr("   ")})
	require.NoError(t, err)
	assert.False(t, m.Ready(), "whitespace-only credential trims to empty")
}

func TestManager_MaskedCredential(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		want       string
	}{
		{name: "unset", credential: "", want: ""},
		{name: "short", credential: "abc", want: "********"},
		{name: "exactly eight", credential: "12345678", want: "********"},
		{name: "long", credential: "sk-proj-1234567890XYZ", want: "sk-p********0XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t, newMemKV())
			if tt.credential != "" {
				_, err := m.Update(context.Background(), Patch{Credential: strPtr(tt.credential)})
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, m.MaskedCredential())
		})
	}
}

func TestManager_PersistsAcrossManagers(t *testing.T) {
	kv := newMemKV()
	ctx := context.Background()

	m1 := newTestManager(t, kv)
	_, err := m1.Update(ctx, Patch{
		Provider:   provPtr(core.ProviderAnthropic),
		Credential: strPtr("sk-persisted"),
		MaxTokens:  intPtr(2000),
	})
	require.NoError(t, err)

	m2 := newTestManager(t, kv)
	s := m2.Current()
	assert.Equal(t, core.ProviderAnthropic, s.Provider)
	assert.Equal(t, "sk-persisted", s.Credential)
	assert.Equal(t, 2000, s.MaxTokens)
}

func TestManager_RoundTripThroughRealBackends(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T, dir string) core.KV
	}{
		{"file", func(t *testing.T, dir string) core.KV {
			b, err := file.New(filepath.Join(dir, "store.json"))
			require.NoError(t, err)
			return b
		}},
		{"sqlite", func(t *testing.T, dir string) core.KV {
			db, err := sqlite.NewDB(context.Background(), filepath.Join(dir, "drambot.db"))
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return sqlite.NewKVRepo(db)
		}},
	}

	for _, tc := range backends {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			ctx := context.Background()

			m1 := newTestManager(t, tc.open(t, dir))
			_, err := m1.Update(ctx, Patch{
				Credential:  strPtr("sk-cask-strength"),
				Temperature: f64Ptr(1.2),
			})
			require.NoError(t, err)

			m2 := newTestManager(t, tc.open(t, dir))
			s := m2.Current()
			assert.Equal(t, "sk-cask-strength", s.Credential)
			assert.Equal(t, 1.2, s.Temperature)
		})
	}
}

func TestManager_ResetRestoresDefaults(t *testing.T) {
	kv := newMemKV()
	ctx := context.Background()

	m := newTestManager(t, kv)
	_, err := m.Update(ctx, Patch{Credential: strPtr("sk-gone")})
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx))
	assert.Equal(t, Defaults(), m.Current())

	m2 := newTestManager(t, kv)
	assert.Equal(t, Defaults(), m2.Current())
}

func TestManager_ProviderSpecFollowsProvider(t *testing.T) {
	m := newTestManager(t, newMemKV())
	ctx := context.Background()

	spec, err := m.ProviderSpec()
	require.NoError(t, err)
	assert.Equal(t, core.ProviderOpenAI, spec.Name)

	_, err = m.Update(ctx, Patch{Provider: provPtr(core.ProviderRelay)})
	require.NoError(t, err)

	spec, err = m.ProviderSpec()
	require.NoError(t, err)
	assert.Equal(t, core.ProviderRelay, spec.Name)
	assert.Equal(t, "https://dram.example", spec.BaseURL)
}

func TestManager_UpdateBeforeHydrationRefused(t *testing.T) {
	kv := newMemKV()
	kv.gate = make(chan struct{})
	defer close(kv.gate)

	m := NewManager(context.Background(), store.New(kv, "test"), "")
	_, err := m.Update(context.Background(), Patch{Credential: strPtr("sk-early")})
	assert.ErrorIs(t, err, core.ErrNotHydrated)
}
