package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/drambot/internal/service/cellar"
	"github.com/sandevgo/drambot/internal/service/chat"
	"github.com/sandevgo/drambot/internal/service/command"
	"github.com/sandevgo/drambot/internal/service/settings"
	"github.com/spf13/cobra"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the conversation transcript to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		app, err := newAppEnv(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		mgr := settings.NewManager(ctx, app.store, app.remote.BaseURL)
		engine, err := cellar.NewEngine(ctx, app.store)
		if err != nil {
			return err
		}
		session := chat.NewSession(ctx, app.cfg, app.store, mgr, engine)

		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := session.Wait(wctx); err != nil {
			return fmt.Errorf("store not readable: %w", err)
		}

		out, err := command.NewExportCommand(session, app.cfg.ExportPath).Execute(ctx, []string{exportFormat})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "md", "transcript format (md, html, json)")
	rootCmd.AddCommand(exportCmd)
}
