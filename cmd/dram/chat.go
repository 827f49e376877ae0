package main

import (
	"os/signal"
	"syscall"

	"github.com/sandevgo/drambot/pkg/log"
	"github.com/sandevgo/drambot/pkg/srv"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat prompt",
	Long: `Loads the cellar, restores the conversation and opens the readline
prompt. Background workers (community review sync) run alongside.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// SIGTERM only: Ctrl+C belongs to the prompt, where it cancels
		// an in-flight request instead of killing the process.
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting drambot")

		// Leaving the prompt cancels ctx, which releases the shutdown
		// wait below.
		services := NewServices(ctx, stop)

		srv.StartServices(ctx, services)

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("drambot has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
