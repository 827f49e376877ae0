package chat

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/drambot/internal/config"
	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/service/cellar"
	"github.com/sandevgo/drambot/internal/service/settings"
	"github.com/sandevgo/drambot/internal/storage/file"
	"github.com/sandevgo/drambot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   chan struct{}
	calls   int
	lastReq core.ChatRequest
}

func (f *fakeClient) Chat(ctx context.Context, req core.ChatRequest) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeClient) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeClient) setReply(reply string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reply = reply
}

func (f *fakeClient) request() core.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	backend, err := file.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	return store.New(backend, "test")
}

func defaultTestConfig() *config.AppConfig {
	return &config.AppConfig{
		RequestTimeout:    2 * time.Second,
		ContextWindowSize: 30,
		PromptTokenBudget: 600,
		PromptRecordLimit: 4,
	}
}

// newReadySession wires a session over st with a configured credential
// and the fake client. The tokenizer is swapped for a cheap length count
// so tests stay offline.
func newReadySession(t *testing.T, st *store.Store, fc *fakeClient, cfg *config.AppConfig) *Session {
	t.Helper()
	ctx := context.Background()

	wctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	mgr := settings.NewManager(ctx, st, "")
	require.NoError(t, mgr.Wait(wctx))
	_, err := mgr.Update(ctx, settings.Patch{Credential: strPtr("test-key-123456")})
	require.NoError(t, err)

	engine, err := cellar.NewEngine(ctx, st)
	require.NoError(t, err)
	require.NoError(t, engine.Wait(wctx))

	if cfg == nil {
		cfg = defaultTestConfig()
	}

	s := NewSession(ctx, cfg, st, mgr, engine)
	s.prompts.count = func(text string) int { return len(text) / 4 }
	if fc != nil {
		s.Dial = func(context.Context) (core.ChatClient, error) { return fc, nil }
	}
	require.NoError(t, s.Wait(wctx))
	return s
}

func strPtr(s string) *string { return &s }

func TestSession_SendAppendsAndResolves(t *testing.T) {
	fc := &fakeClient{reply: "Pour the Lagavulin."}
	s := newReadySession(t, newTestStore(t), fc, nil)

	msg, err := s.Send(context.Background(), "what should I open tonight?")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAssistant, msg.Role)
	assert.Equal(t, "Pour the Lagavulin.", msg.Content)
	assert.False(t, msg.Pending)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, "what should I open tonight?", msgs[0].Content)
	assert.Equal(t, msg, msgs[1])

	assert.NotEmpty(t, msgs[0].ID)
	assert.NotEmpty(t, msgs[1].ID)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)

	assert.False(t, s.Loading())
	assert.NoError(t, s.LastErr())
}

func TestSession_BlankSendRejected(t *testing.T) {
	s := newReadySession(t, newTestStore(t), &fakeClient{reply: "hello"}, nil)

	_, err := s.Send(context.Background(), "   \n\t ")
	assert.ErrorIs(t, err, core.ErrEmptyMessage)
	assert.Empty(t, s.Messages())
	assert.False(t, s.Loading())
}

func TestSession_NotReadyRejected(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	wctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	mgr := settings.NewManager(ctx, st, "")
	require.NoError(t, mgr.Wait(wctx))

	engine, err := cellar.NewEngine(ctx, st)
	require.NoError(t, err)
	require.NoError(t, engine.Wait(wctx))

	s := NewSession(ctx, defaultTestConfig(), st, mgr, engine)
	require.NoError(t, s.Wait(wctx))

	_, err = s.Send(ctx, "hello")
	assert.ErrorIs(t, err, core.ErrNotReady)
	assert.Empty(t, s.Messages())
}

func TestSession_BusySendRejected(t *testing.T) {
	fc := &fakeClient{reply: "slainte", block: make(chan struct{})}
	s := newReadySession(t, newTestStore(t), fc, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first")
		done <- err
	}()

	require.Eventually(t, s.Loading, time.Second, 5*time.Millisecond)

	// Placeholder is visible while the request is in flight.
	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].Pending)

	_, err := s.Send(context.Background(), "second")
	assert.ErrorIs(t, err, core.ErrBusy)
	assert.Len(t, s.Messages(), 2)

	close(fc.block)
	require.NoError(t, <-done)

	msgs = s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "slainte", msgs[1].Content)
	assert.False(t, msgs[1].Pending)
}

func TestSession_CancelLeavesOnlyUserMessage(t *testing.T) {
	fc := &fakeClient{reply: "never delivered", block: make(chan struct{})}
	s := newReadySession(t, newTestStore(t), fc, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "taking too long")
		done <- err
	}()

	require.Eventually(t, s.Loading, time.Second, 5*time.Millisecond)
	s.Cancel()

	err := <-done
	assert.ErrorIs(t, err, core.ErrCanceled)

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.False(t, s.Loading())
	assert.NoError(t, s.LastErr())
}

func TestSession_CancelIdleIsNoOp(t *testing.T) {
	s := newReadySession(t, newTestStore(t), &fakeClient{reply: "hi"}, nil)

	s.Cancel()
	s.Cancel()
	assert.False(t, s.Loading())
	assert.Empty(t, s.Messages())
}

func TestSession_FailureAppendsSingleErrorLine(t *testing.T) {
	fc := &fakeClient{err: &core.RequestError{StatusCode: 500, Message: "upstream exploded"}}
	s := newReadySession(t, newTestStore(t), fc, nil)

	msg, err := s.Send(context.Background(), "pour me something peaty")

	var reqErr *core.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 500, reqErr.StatusCode)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
	assert.False(t, msgs[1].Pending)
	assert.Equal(t, msg, msgs[1])
	assert.Contains(t, msgs[1].Content, "Give it another try")

	require.Error(t, s.LastErr())
	assert.False(t, s.Loading())

	// The next send works and clears the sticky error.
	fc.setErr(nil)
	fc.setReply("back in business")

	_, err = s.Send(context.Background(), "still there?")
	require.NoError(t, err)
	assert.NoError(t, s.LastErr())
	assert.Len(t, s.Messages(), 4)
}

func TestSession_TimeoutSurfacesAsRequestError(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.RequestTimeout = 50 * time.Millisecond

	fc := &fakeClient{reply: "too slow", block: make(chan struct{})}
	s := newReadySession(t, newTestStore(t), fc, cfg)

	_, err := s.Send(context.Background(), "hello?")

	var reqErr *core.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.StatusCode)
	assert.Contains(t, reqErr.Message, "no answer within")

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
	require.Error(t, s.LastErr())
}

func TestSession_ClearTruncatesLogAndHistory(t *testing.T) {
	st := newTestStore(t)
	fc := &fakeClient{reply: "noted"}
	s := newReadySession(t, st, fc, nil)

	_, err := s.Send(context.Background(), "remember this dram")
	require.NoError(t, err)
	require.Len(t, s.Messages(), 2)

	require.NoError(t, s.Clear(context.Background()))
	assert.Empty(t, s.Messages())
	assert.NoError(t, s.LastErr())

	// A fresh session over the same store starts empty too.
	again := newReadySession(t, st, fc, nil)
	assert.Empty(t, again.Messages())
}

func TestSession_HistoryPersistsAcrossSessions(t *testing.T) {
	st := newTestStore(t)
	fc := &fakeClient{reply: "a fine choice"}
	s := newReadySession(t, st, fc, nil)

	_, err := s.Send(context.Background(), "thoughts on the Springbank?")
	require.NoError(t, err)
	want := s.Messages()

	again := newReadySession(t, st, fc, nil)
	assert.Equal(t, want, again.Messages())
}

func TestSession_ExportSnapshotIndependent(t *testing.T) {
	fc := &fakeClient{reply: "cheers"}
	s := newReadySession(t, newTestStore(t), fc, nil)

	_, err := s.Send(context.Background(), "hello there")
	require.NoError(t, err)

	tr := s.Export()
	assert.False(t, tr.ExportedAt.IsZero())
	require.Len(t, tr.Messages, 2)

	tr.Messages[0].Content = "scribbled over"
	assert.Equal(t, "hello there", s.Messages()[0].Content)
}

func TestSession_WireRequestShape(t *testing.T) {
	fc := &fakeClient{reply: "first answer"}
	s := newReadySession(t, newTestStore(t), fc, nil)

	_, err := s.Send(context.Background(), "what is in the cellar?")
	require.NoError(t, err)

	req := fc.request()
	assert.Contains(t, req.System, "whisky cellar companion")
	assert.Contains(t, req.System, "Bottles currently in the cellar:")
	require.Len(t, req.Messages, 1)
	assert.Equal(t, core.RoleUser, req.Messages[0].Role)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, 1000, req.MaxTokens)

	// The second round carries the settled history, never a placeholder.
	_, err = s.Send(context.Background(), "and a second question")
	require.NoError(t, err)

	req = fc.request()
	require.Len(t, req.Messages, 3)
	for _, m := range req.Messages {
		assert.False(t, m.Pending)
	}
	assert.Equal(t, "and a second question", req.Messages[2].Content)
	assert.Equal(t, 2, fc.callCount())
}

func TestSession_WireWindowedToRecentTurns(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.ContextWindowSize = 2

	fc := &fakeClient{reply: "aye"}
	s := newReadySession(t, newTestStore(t), fc, cfg)

	for _, text := range []string{"one", "two", "three"} {
		_, err := s.Send(context.Background(), text)
		require.NoError(t, err)
	}

	req := fc.request()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "three", req.Messages[1].Content)
}

func TestMessageLog_ReplaceAndRemove(t *testing.T) {
	l := newMessageLog()
	l.append(core.ChatMessage{ID: "a", Content: "one"})
	l.append(core.ChatMessage{ID: "b", Content: "two", Pending: true})
	l.append(core.ChatMessage{ID: "c", Content: "three"})

	if ok := l.replace("b", core.ChatMessage{Content: "two resolved"}); !ok {
		t.Fatal("replace of existing id failed")
	}
	msgs := l.messages()
	if msgs[1].Content != "two resolved" || msgs[1].ID != "b" {
		t.Errorf("replace kept wrong message: %+v", msgs[1])
	}

	if ok := l.remove("b"); !ok {
		t.Fatal("remove of existing id failed")
	}
	msgs = l.messages()
	if len(msgs) != 2 || msgs[0].ID != "a" || msgs[1].ID != "c" {
		t.Errorf("unexpected order after remove: %+v", msgs)
	}

	if l.replace("ghost", core.ChatMessage{}) {
		t.Error("replace of unknown id reported success")
	}
	if l.remove("ghost") {
		t.Error("remove of unknown id reported success")
	}
}
