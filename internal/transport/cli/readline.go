package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/drambot/internal/config"
	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/service/chat"
	"github.com/sandevgo/drambot/pkg/log"
)

type ReadLine struct {
	cfg     *config.AppConfig
	session *chat.Session
	router  core.CmdRouter
	rl      *readline.Instance

	// OnExit, when set, runs as Start returns. The chat command uses it
	// to release the background services once the prompt is left.
	OnExit func()
}

func NewReadLine(session *chat.Session, router core.CmdRouter, cfg *config.AppConfig) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:     cfg,
		session: session,
		router:  router,
		rl:      rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	if r.OnExit != nil {
		defer r.OnExit()
	}

	logger := log.FromCtx(ctx)
	logger.Info().Msg("readline chat started")

	fmt.Fprintf(r.rl.Stdout(), "%s is listening. Type /help for commands, 'exit' to quit.\n", core.DramName)
	if !r.session.Ready() {
		fmt.Fprintln(r.rl.Stdout(), "No provider configured yet. Run 'dram setup' to get started.")
	}

	for {
		// Check context before blocking read. A canceled context is the
		// normal shutdown path, not a start failure.
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		if out, handled := r.router.Execute(ctx, line); handled {
			fmt.Fprintf(r.rl.Stdout(), "%s\n", out)
			continue
		}

		r.send(ctx, line)
	}
}

// send runs one chat round-trip. While the request is in flight Ctrl+C
// cancels it instead of killing the process; the prompt comes back with
// only the user line kept.
func (r *ReadLine) send(ctx context.Context, line string) {
	logger := log.FromCtx(ctx)

	type result struct {
		msg core.ChatMessage
		err error
	}
	done := make(chan result, 1)
	go func() {
		msg, err := r.session.Send(ctx, line)
		done <- result{msg: msg, err: err}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	var res result
	select {
	case res = <-done:
	case <-sigCh:
		r.session.Cancel()
		res = <-done
	}

	if res.err != nil {
		switch {
		case errors.Is(res.err, core.ErrCanceled):
			fmt.Fprintln(r.rl.Stdout(), "(canceled)")
		case errors.Is(res.err, core.ErrBusy):
			fmt.Fprintln(r.rl.Stdout(), "Still pouring the previous answer, hold on.")
		case errors.Is(res.err, core.ErrNotReady):
			fmt.Fprintln(r.rl.Stdout(), "No provider configured yet. Run 'dram setup' first.")
		default:
			// The session already settled a persona-voiced error line
			// into the log; it is printed below.
			logger.Error().Err(res.err).Msg("chat round-trip failed")
		}
	}

	if res.msg.Content != "" {
		fmt.Fprintf(r.rl.Stdout(), "%s\n", res.msg.Content)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
