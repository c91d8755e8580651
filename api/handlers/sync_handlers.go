package handlers

import (
	"context"
	"errors"
	"net/http"

	"bluewitness-api/core/dssync"
	"bluewitness-api/core/utils"
)

type DatasetSyncer interface {
	Sync(ctx context.Context) (dssync.Result, error)
}

type SyncHandler struct {
	syncer DatasetSyncer
	logger *utils.Logger
}

func NewSyncHandler(syncer DatasetSyncer, logger *utils.Logger) *SyncHandler {
	return &SyncHandler{syncer: syncer, logger: logger}
}

func (h *SyncHandler) FetchFromDS(w http.ResponseWriter, r *http.Request) {
	res, err := h.syncer.Sync(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Operation successful",
			"fetched": res.Fetched,
			"created": res.Created,
			"skipped": res.Skipped,
			"invalid": res.Invalid,
		})
	case errors.Is(err, dssync.ErrNotConfigured):
		writeMessage(w, http.StatusServiceUnavailable, "dataset source is not configured")
	case errors.Is(err, dssync.ErrThrottled):
		writeMessage(w, http.StatusTooManyRequests, "dataset sync ran recently, try again later")
	case errors.Is(err, dssync.ErrRunning):
		writeMessage(w, http.StatusConflict, "dataset sync already running")
	default:
		if h.logger != nil {
			h.logger.Errorf("dataset sync: %v", err)
		}
		writeMessage(w, http.StatusBadGateway, "Error with operation")
	}
}
