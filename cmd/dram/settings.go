package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sandevgo/drambot/internal/core"
	"github.com/sandevgo/drambot/internal/service/settings"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change provider settings",
}

func withSettings(ctx context.Context, fn func(ctx context.Context, app *appEnv, mgr *settings.Manager) error) error {
	app, err := newAppEnv(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	mgr := settings.NewManager(ctx, app.store, app.remote.BaseURL)

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mgr.Wait(wctx); err != nil {
		return fmt.Errorf("store not readable: %w", err)
	}

	return fn(ctx, app, mgr)
}

func printSettings(w io.Writer, mgr *settings.Manager) {
	s := mgr.Current()
	model := s.Model
	if model == "" {
		model = "(provider default)"
	}
	cred := mgr.MaskedCredential()
	if cred == "" {
		cred = "(not set)"
	}

	fmt.Fprintf(w, "Provider:     %s\n", s.Provider)
	fmt.Fprintf(w, "Model:        %s\n", model)
	fmt.Fprintf(w, "Credential:   %s\n", cred)
	fmt.Fprintf(w, "Temperature:  %.2f\n", s.Temperature)
	fmt.Fprintf(w, "Max tokens:   %d\n", s.MaxTokens)

	if ok, issues := mgr.Validate(); !ok {
		fmt.Fprintln(w)
		for _, issue := range issues {
			fmt.Fprintf(w, "! %s\n", issue)
		}
	}
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		return withSettings(ctx, func(ctx context.Context, app *appEnv, mgr *settings.Manager) error {
			printSettings(cmd.OutOrStdout(), mgr)
			return nil
		})
	},
}

var (
	setProvider    string
	setCredential  string
	setModel       string
	setTemperature float64
	setMaxTokens   int
)

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		return withSettings(ctx, func(ctx context.Context, app *appEnv, mgr *settings.Manager) error {
			var p settings.Patch
			if cmd.Flags().Changed("provider") {
				prov := core.Provider(setProvider)
				p.Provider = &prov
			}
			if cmd.Flags().Changed("credential") {
				p.Credential = &setCredential
			}
			if cmd.Flags().Changed("model") {
				p.Model = &setModel
			}
			if cmd.Flags().Changed("temperature") {
				p.Temperature = &setTemperature
			}
			if cmd.Flags().Changed("max-tokens") {
				p.MaxTokens = &setMaxTokens
			}
			if p == (settings.Patch{}) {
				return fmt.Errorf("nothing to change, pass at least one flag")
			}

			if _, err := mgr.Update(ctx, p); err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), mgr)
			return nil
		})
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		return withSettings(ctx, func(ctx context.Context, app *appEnv, mgr *settings.Manager) error {
			if err := mgr.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings reset to defaults.")
			return nil
		})
	},
}

func init() {
	settingsSetCmd.Flags().StringVar(&setProvider, "provider", "", "chat provider (openai, anthropic, gemini, relay)")
	settingsSetCmd.Flags().StringVar(&setCredential, "credential", "", "API key or relay token")
	settingsSetCmd.Flags().StringVar(&setModel, "model", "", "model name, empty for the provider default")
	settingsSetCmd.Flags().Float64Var(&setTemperature, "temperature", 0, "sampling temperature")
	settingsSetCmd.Flags().IntVar(&setMaxTokens, "max-tokens", 0, "response token cap")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}
