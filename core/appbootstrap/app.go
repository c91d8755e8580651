package appbootstrap

import (
	"context"
	"fmt"
	"time"

	"bluewitness-api/api"
	"bluewitness-api/config"
	"bluewitness-api/core/store"
	"bluewitness-api/core/utils"
)

const workerStopTimeout = 15 * time.Second

// Run opens the database, applies migrations, starts the background workers and
// serves HTTP until ctx is cancelled.
func Run(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) error {
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := store.ApplyMigrations(ctx, db, logger); err != nil {
		return err
	}

	rt, err := composeRuntime(cfg, db, logger)
	if err != nil {
		return err
	}
	for _, w := range rt.workers {
		w.StartWithContext(ctx)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), workerStopTimeout)
		defer cancel()
		for _, w := range rt.workers {
			if err := w.StopWithContext(stopCtx); err != nil {
				logger.Errorf("stop worker: %v", err)
			}
		}
	}()

	srv := api.NewServer(cfg, rt.serverDeps, logger)
	return srv.ListenAndServe(ctx)
}
