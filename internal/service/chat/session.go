package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sandevgo/drambot/internal/config"
	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/providers/llm"
	"github.com/sandevgo/drambot/internal/service/cellar"
	"github.com/sandevgo/drambot/internal/service/settings"
	"github.com/sandevgo/drambot/internal/store"
	"github.com/sandevgo/drambot/pkg/log"
)

const historyKey = "history"

// DialFunc resolves the chat client for the next round-trip. It runs per
// send, so a provider or credential change applies without a restart.
type DialFunc func(ctx context.Context) (core.ChatClient, error)

// ErrorTextFunc renders the in-conversation line for a failed round-trip.
type ErrorTextFunc func(err error) string

// DefaultErrorText is the stock wording for a failed round-trip.
func DefaultErrorText(err error) string {
	return fmt.Sprintf("Sorry, I couldn't get an answer this time (%v). Give it another try in a moment.", err)
}

// Session drives one conversation: the ordered message log, the single
// in-flight request and persistence of the settled transcript.
type Session struct {
	cfg      *config.AppConfig
	settings *settings.Manager
	engine   *cellar.Engine
	history  *store.Value[[]core.ChatMessage]
	prompts  *promptBuilder

	// Dial and ErrorText may be swapped out before first use.
	Dial      DialFunc
	ErrorText ErrorTextFunc

	mu       sync.Mutex
	entropy  *ulid.MonotonicEntropy
	log      *messageLog
	restored bool
	loading  bool
	cancel   context.CancelFunc
	lastErr  error
}

func NewSession(ctx context.Context, cfg *config.AppConfig, st *store.Store, mgr *settings.Manager, engine *cellar.Engine) *Session {
	s := &Session{
		cfg:      cfg,
		settings: mgr,
		engine:   engine,
		history:  store.NewValue(ctx, st, historyKey, []core.ChatMessage{}),
		prompts:  newPromptBuilder(cfg.PromptRecordLimit, cfg.PromptTokenBudget),
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		log:      newMessageLog(),
	}
	s.Dial = s.dialClient
	s.ErrorText = DefaultErrorText
	return s
}

// newID mints a ULID: millisecond timestamp plus a monotonic random
// suffix, so two messages appended in the same millisecond still sort
// and never collide. Callers hold s.mu.
func (s *Session) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// ensureRestored swaps the persisted transcript in once hydration has
// finished. A log the user already started filling wins over the stored
// one. Callers hold s.mu.
func (s *Session) ensureRestored() {
	if s.restored || !s.history.Hydrated() {
		return
	}
	s.restored = true
	if s.log.len() == 0 {
		s.log.restore(s.history.Get())
	}
}

// Send runs one round-trip. It appends the user message and a pending
// placeholder immediately, then blocks until the backend answers, the
// timeout fires or Cancel aborts it. On success the placeholder becomes
// the reply. On failure the placeholder is removed and one assistant
// error line is appended and returned alongside the raw error. A
// canceled send leaves only the user message behind and returns
// ErrCanceled.
func (s *Session) Send(ctx context.Context, text string) (core.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return core.ChatMessage{}, core.ErrEmptyMessage
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return core.ChatMessage{}, core.ErrBusy
	}
	if !s.settings.Ready() {
		s.mu.Unlock()
		return core.ChatMessage{}, core.ErrNotReady
	}
	s.ensureRestored()

	now := time.Now().UTC()
	user := core.ChatMessage{ID: s.newID(), Role: core.RoleUser, Content: text, CreatedAt: now}
	pending := core.ChatMessage{ID: s.newID(), Role: core.RoleAssistant, CreatedAt: now, Pending: true}
	s.log.append(user)
	s.log.append(pending)

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	s.loading = true
	s.cancel = cancel
	s.lastErr = nil

	req := s.buildRequest()
	s.mu.Unlock()

	reply, err := s.roundTrip(reqCtx, req)
	cancel()

	return s.settle(ctx, pending.ID, reply, err)
}

func (s *Session) roundTrip(ctx context.Context, req core.ChatRequest) (string, error) {
	client, err := s.Dial(ctx)
	if err != nil {
		return "", err
	}
	return client.Chat(ctx, req)
}

// buildRequest snapshots the prompt inputs under the lock. The pending
// placeholder never goes on the wire, and the history is windowed to the
// most recent turns.
func (s *Session) buildRequest() core.ChatRequest {
	cur := s.settings.Current()

	msgs := s.log.messages()
	wire := make([]core.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Pending {
			continue
		}
		wire = append(wire, m)
	}
	if n := s.cfg.ContextWindowSize; n > 0 && len(wire) > n {
		wire = wire[len(wire)-n:]
	}

	return core.ChatRequest{
		System:      s.prompts.build(s.engine.Highlights(s.prompts.recordLimit), s.engine.RemoteHighlights()),
		Messages:    wire,
		Model:       cur.Model,
		Temperature: cur.Temperature,
		MaxTokens:   cur.MaxTokens,
	}
}

// settle resolves the placeholder under the lock. ctx is the caller's
// context, not the request's, so the transcript still persists after a
// timeout or cancel.
func (s *Session) settle(ctx context.Context, pendingID, reply string, rtErr error) (core.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	s.cancel = nil

	if rtErr == nil {
		msg := core.ChatMessage{ID: pendingID, Role: core.RoleAssistant, Content: reply, CreatedAt: time.Now().UTC()}
		s.log.replace(pendingID, msg)
		s.persistLocked(ctx)
		return msg, nil
	}

	removed := s.log.remove(pendingID)

	if errors.Is(rtErr, context.Canceled) {
		s.persistLocked(ctx)
		return core.ChatMessage{}, core.ErrCanceled
	}

	if errors.Is(rtErr, context.DeadlineExceeded) {
		rtErr = &core.RequestError{Message: fmt.Sprintf("no answer within %s", s.cfg.RequestTimeout)}
	}
	s.lastErr = rtErr

	errMsg := core.ChatMessage{
		ID:        s.newID(),
		Role:      core.RoleAssistant,
		Content:   s.ErrorText(rtErr),
		CreatedAt: time.Now().UTC(),
	}
	if removed {
		s.log.append(errMsg)
	}
	s.persistLocked(ctx)
	return errMsg, rtErr
}

// Cancel aborts the in-flight request, if any. The send path observes
// the canceled context, removes its placeholder and clears the loading
// flag; no error line is appended for a cancel. Safe to call at any
// time, including when nothing is outstanding.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Clear truncates the conversation and its persisted history. Settings
// and cellar state are untouched. An in-flight request is aborted first.
func (s *Session) Clear(ctx context.Context) error {
	s.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	// The user explicitly emptied the log; a later hydration must not
	// swap the old transcript back in.
	s.restored = true
	s.log.truncate()
	s.lastErr = nil

	if !s.history.Hydrated() {
		// Only the in-memory log can be cleared this early. The stored
		// copy is overwritten by the next persisted mutation.
		return nil
	}
	return s.history.Clear(ctx)
}

// Export snapshots the conversation for rendering to a file. The log is
// copied; exporting never mutates session state.
func (s *Session) Export() core.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureRestored()

	return core.Transcript{
		ExportedAt: time.Now().UTC(),
		Messages:   s.log.messages(),
	}
}

// Messages returns the log in append order.
func (s *Session) Messages() []core.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureRestored()
	return s.log.messages()
}

// Loading reports whether a request is outstanding.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Ready reports whether Send would be accepted at all, i.e. the settings
// carry a structurally valid provider with a credential.
func (s *Session) Ready() bool {
	return s.settings.Ready()
}

// LastErr returns the raw error behind the most recent failed
// round-trip, for status banners. Cancellation never sets it and a
// successful send clears it.
func (s *Session) LastErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Wait blocks until the persisted history has been read back into the log.
func (s *Session) Wait(ctx context.Context) error {
	if err := s.history.Wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.ensureRestored()
	s.mu.Unlock()
	return nil
}

// Err exposes the history handle's last soft failure for status display.
func (s *Session) Err() error {
	return s.history.Err()
}

// persistLocked writes the settled log through the history handle. Local
// store writes are fire-and-forget: failures are logged and recorded on
// the handle, never surfaced into the conversation. Callers hold s.mu.
func (s *Session) persistLocked(ctx context.Context) {
	if !s.history.Hydrated() {
		return
	}

	msgs := s.log.messages()
	settled := make([]core.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Pending {
			continue
		}
		settled = append(settled, m)
	}

	if err := s.history.Set(ctx, settled); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to persist chat history")
	}
}

func (s *Session) dialClient(ctx context.Context) (core.ChatClient, error) {
	spec, err := s.settings.ProviderSpec()
	if err != nil {
		return nil, err
	}
	cur := s.settings.Current()
	return llm.NewProvider(ctx, spec, cur.Credential, cur.Model), nil
}
