package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sandevgo/drambot/internal/config"
	"github.com/sandevgo/drambot/internal/service/settings"
	"github.com/sandevgo/drambot/internal/service/setup"
	"github.com/sandevgo/drambot/pkg/env"
	"github.com/sandevgo/drambot/pkg/log"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:           "setup",
	Short:         "Configure DramBot through a guided wizard",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting drambot setup")

		runtimePath := config.GetRuntimePath()

		// run wizard (includes save step)
		state, err := setup.RunWizard(func(st *setup.State) error {
			return saveSetup(ctx, runtimePath, st)
		})
		if err != nil {
			return err
		}

		// Load the freshly written .env so anything else in this
		// process sees the chosen backend.
		envPath := filepath.Join(runtimePath, ".env")
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		}

		logger.Info().Str("provider", string(state.Provider)).Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Setup complete! You can now run 'dram chat'.")
		return nil
	},
}

// saveSetup persists the wizard outcome. Process-level choices land in
// the .env file; operator settings go through the settings manager so
// its clamping and trimming apply. The store is rebuilt here because
// the wizard may have picked a different backend than the process
// started with.
func saveSetup(ctx context.Context, runtimePath string, st *setup.State) error {
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	content, err := env.MarshalEnv(&config.AppConfig{
		RuntimePath:  runtimePath,
		StoreBackend: st.Backend,
	})
	if err != nil {
		return fmt.Errorf("failed to render env file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runtimePath, ".env"), []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}

	cfg := config.NewAppConfig(ctx)
	cfg.RuntimePath = runtimePath
	cfg.StoreBackend = st.Backend

	str, db, err := initStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	mgr := settings.NewManager(ctx, str, "")
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mgr.Wait(wctx); err != nil {
		return fmt.Errorf("store not readable: %w", err)
	}

	if _, err := mgr.Update(ctx, settings.Patch{
		Provider:   &st.Provider,
		Credential: &st.Credential,
		Model:      &st.Model,
	}); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
