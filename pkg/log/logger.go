package log

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

// NewContextWithLogger builds the process logger and attaches it to the
// context. Logs go to stderr so they never interleave with the chat
// prompt or with piped export output on stdout. The returned flush
// closes the diode writer; call it before exit or trailing lines are
// lost.
func NewContextWithLogger(ctx context.Context, debug bool) (context.Context, func()) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	// Non-blocking ring buffer so a slow terminal never stalls a send.
	wr := diode.NewWriter(os.Stderr, 1000, 5*time.Millisecond, func(missed int) {
		fmt.Fprintf(os.Stderr, "logger dropped %d messages\n", missed)
	})

	output := zerolog.ConsoleWriter{
		Out:        wr,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.LevelFieldName,
			zerolog.TimestampFieldName,
			zerolog.MessageFieldName,
		},
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger.WithContext(ctx), func() {
		wr.Close()
	}
}

// FromCtx returns the logger attached to ctx. Contexts without one get
// a disabled logger, which is what package tests want.
func FromCtx(ctx context.Context) *zerolog.Logger {
	return log.Ctx(ctx)
}
