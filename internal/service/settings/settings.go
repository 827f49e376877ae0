package settings

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/providers/llm"
	"github.com/sandevgo/drambot/internal/store"
)

const storeKey = "settings"

// credentialMask is what MaskedCredential shows instead of the hidden
// middle. Fixed width so the mask never reveals the credential's length.
const credentialMask = "********"

const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinMaxTokens   = 1
	MaxMaxTokens   = 4000
)

// Settings is the operator configuration for the chat session. The whole
// value is stored obfuscated because it embeds the credential.
type Settings struct {
	Provider    core.Provider `json:"provider"`
	Credential  string        `json:"credential"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"maxTokens"`
}

// Defaults is the settings value a fresh install starts from.
func Defaults() Settings {
	return Settings{
		Provider:    core.ProviderOpenAI,
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

// Patch names the fields to change; nil fields are left alone.
type Patch struct {
	Provider    *core.Provider
	Credential  *string
	Model       *string
	Temperature *float64
	MaxTokens   *int
}

// Manager owns the stored settings value and every mutation path to it.
type Manager struct {
	mu           sync.Mutex
	value        *store.Value[Settings]
	relayBaseURL string
}

func NewManager(ctx context.Context, s *store.Store, relayBaseURL string) *Manager {
	return &Manager{
		value:        store.NewValue(ctx, s, storeKey, Defaults(), store.Sensitive()),
		relayBaseURL: relayBaseURL,
	}
}

// Current returns the active settings (defaults until hydration).
func (m *Manager) Current() Settings {
	return m.value.Get()
}

// Update merges the patch field by field, clamping and trimming each
// value before anything is persisted. A storage failure is returned to
// the caller: a save the operator asked for must not fail silently.
func (m *Manager) Update(ctx context.Context, p Patch) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.Provider != nil && !core.KnownProviders[*p.Provider] {
		return Settings{}, &core.ValidationError{
			Field:  "provider",
			Reason: fmt.Sprintf("unknown provider %q", *p.Provider),
		}
	}

	s := m.value.Get()
	if p.Provider != nil {
		s.Provider = *p.Provider
	}
	if p.Credential != nil {
		s.Credential = strings.TrimSpace(*p.Credential)
	}
	if p.Model != nil {
		s.Model = strings.TrimSpace(*p.Model)
	}
	if p.Temperature != nil {
		s.Temperature = clampFloat(*p.Temperature, MinTemperature, MaxTemperature)
	}
	if p.MaxTokens != nil {
		s.MaxTokens = clampInt(*p.MaxTokens, MinMaxTokens, MaxMaxTokens)
	}

	if err := m.value.Set(ctx, s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports structural validity: provider in the known set,
// numerics in range. Whether the credential would actually be accepted by
// the provider is out of scope here, and an empty credential is
// structurally fine (Ready covers that).
func (m *Manager) Validate() (bool, []string) {
	s := m.value.Get()

	var errs []string
	if !core.KnownProviders[s.Provider] {
		errs = append(errs, fmt.Sprintf("provider: unknown provider %q", s.Provider))
	}
	if s.Temperature < MinTemperature || s.Temperature > MaxTemperature {
		errs = append(errs, fmt.Sprintf("temperature: %v out of range [%v, %v]", s.Temperature, MinTemperature, MaxTemperature))
	}
	if s.MaxTokens < MinMaxTokens || s.MaxTokens > MaxMaxTokens {
		errs = append(errs, fmt.Sprintf("maxTokens: %d out of range [%d, %d]", s.MaxTokens, MinMaxTokens, MaxMaxTokens))
	}
	return len(errs) == 0, errs
}

// Ready reports whether the session may issue requests.
func (m *Manager) Ready() bool {
	ok, _ := m.Validate()
	return ok && m.value.Get().Credential != ""
}

// ProviderSpec resolves the active provider to its wire variant.
func (m *Manager) ProviderSpec() (llm.ProviderSpec, error) {
	return llm.SpecFor(m.value.Get().Provider, m.relayBaseURL)
}

// MaskedCredential is a display-only view of the credential. Short
// credentials render as the mask alone so nothing leaks.
func (m *Manager) MaskedCredential() string {
	return maskCredential(m.value.Get().Credential)
}

func maskCredential(c string) string {
	if c == "" {
		return ""
	}
	if len(c) <= 8 {
		return credentialMask
	}
	return c[:4] + credentialMask + c[len(c)-4:]
}

// Reset restores defaults and removes the stored value. This is the only
// delete path for settings.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value.Clear(ctx)
}

// Wait blocks until the stored settings have been read.
func (m *Manager) Wait(ctx context.Context) error {
	return m.value.Wait(ctx)
}

// Err exposes the handle's last soft failure for status display.
func (m *Manager) Err() error {
	return m.value.Err()
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
