package appbootstrap

import (
	"database/sql"

	"bluewitness-api/api"
	"bluewitness-api/config"
	"bluewitness-api/core/dssync"
	"bluewitness-api/core/incidents"
	"bluewitness-api/core/store"
	"bluewitness-api/core/utils"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	workers    []api.BackgroundWorker
}

func composeRuntime(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) (*runtimeComposition, error) {
	incidentsStore := store.NewIncidentsStore(db)
	incidentsSvc := incidents.NewService(incidentsStore, logger)
	dsClient := dssync.NewClient(cfg.DS)
	syncer := dssync.NewSyncer(dsClient, incidentsSvc, cfg.DS.MinInterval, logger)
	syncScheduler, err := dssync.NewScheduler(cfg.DS.SyncSchedule, syncer, logger)
	if err != nil {
		return nil, err
	}

	return &runtimeComposition{
		serverDeps: api.ServerDeps{
			DB:           db,
			IncidentsSvc: incidentsSvc,
			Syncer:       syncer,
		},
		workers: []api.BackgroundWorker{syncScheduler},
	}, nil
}
