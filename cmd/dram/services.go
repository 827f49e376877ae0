package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sandevgo/drambot/internal/config"
	"github.com/sandevgo/drambot/internal/remote"
	"github.com/sandevgo/drambot/internal/service/cellar"
	"github.com/sandevgo/drambot/internal/service/chat"
	"github.com/sandevgo/drambot/internal/service/command"
	"github.com/sandevgo/drambot/internal/service/settings"
	"github.com/sandevgo/drambot/internal/storage/file"
	"github.com/sandevgo/drambot/internal/storage/sqlite"
	"github.com/sandevgo/drambot/internal/store"
	"github.com/sandevgo/drambot/internal/transport/cli"
	"github.com/sandevgo/drambot/pkg/log"
	"github.com/sandevgo/drambot/pkg/srv"
)

// appEnv is the wiring shared by every subcommand: env file, parsed
// configs and the store over the selected backend.
type appEnv struct {
	cfg    *config.AppConfig
	remote *config.RemoteConfig
	store  *store.Store
	db     *sql.DB
}

func newAppEnv(ctx context.Context) (*appEnv, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, err
	}

	cfg := config.NewAppConfig(ctx)
	remoteCfg := config.NewRemoteConfig(ctx)

	st, db, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &appEnv{cfg: cfg, remote: remoteCfg, store: st, db: db}, nil
}

func (a *appEnv) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// NewServices assembles everything the chat command runs: storage
// cleanup, the optional review sync worker and the readline transport.
// onExit is invoked when the prompt is left so the process can wind down.
func NewServices(ctx context.Context, onExit func()) []srv.Service {
	logger := log.FromCtx(ctx)

	app, err := newAppEnv(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	services := make([]srv.Service, 0)
	if app.db != nil {
		services = append(services, srv.NewCleanup(app.db.Close))
	}

	// Settings and cellar
	mgr := settings.NewManager(ctx, app.store, app.remote.BaseURL)

	engine, err := cellar.NewEngine(ctx, app.store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load cellar")
	}

	// Community review sync
	if app.remote.SyncEnabled {
		client := remote.NewClient(app.remote.BaseURL, app.remote.Token)
		syncer := cellar.NewSyncer(engine, client)
		syncer.Interval = app.remote.SyncInterval
		syncer.Limit = app.remote.SyncLimit
		services = append(services, syncer)
	}

	// Chat session
	session := chat.NewSession(ctx, app.cfg, app.store, mgr, engine)

	// Block briefly so the first prompt starts from restored settings
	// and history. Not fatal: with the store unavailable everything
	// still runs on defaults.
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mgr.Wait(wctx); err != nil {
		logger.Warn().Err(err).Msg("settings not hydrated")
	}
	if err := engine.Wait(wctx); err != nil {
		logger.Warn().Err(err).Msg("cellar annex not hydrated")
	}
	if err := session.Wait(wctx); err != nil {
		logger.Warn().Err(err).Msg("history not hydrated")
	}

	// CLI transport
	router := command.New(command.NewCommands(session, engine, mgr, app.cfg.ExportPath))
	rl, err := cli.NewReadLine(session, router, app.cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize readline")
	}
	rl.OnExit = onExit
	services = append(services, rl)

	return services
}

func initStore(ctx context.Context, cfg *config.AppConfig) (*store.Store, *sql.DB, error) {
	if err := os.MkdirAll(cfg.GetRuntimePath(), 0755); err != nil {
		return nil, nil, err
	}

	switch cfg.StoreBackend {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, err
		}
		return store.New(sqlite.NewKVRepo(db), cfg.StoreSecret), db, nil
	default:
		backend, err := file.New(cfg.GetStorePath())
		if err != nil {
			return nil, nil, err
		}
		return store.New(backend, cfg.StoreSecret), nil, nil
	}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
