package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tablewise/bistro-cli/internal/engine"
	"github.com/tablewise/bistro-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "bistro.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEngine builds the assessment engine from the shipped tuning,
// overlaid with the configured tuning file when one is set.
func initEngine() (*engine.Engine, error) {
	tuning := engine.DefaultConfig()
	if cfg.Engine.TuningFile != "" {
		t, err := engine.LoadTuning(cfg.Engine.TuningFile)
		if err != nil {
			return nil, err
		}
		tuning = t
		zap.L().Info("engine tuning loaded", zap.String("file", cfg.Engine.TuningFile))
	}
	return engine.New(tuning, nil)
}
