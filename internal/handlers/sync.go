package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pdsync "github.com/pulseboard-dev/pulseboard/internal/sync"
)

type SyncHandler struct {
	Syncer *pdsync.Syncer
}

// Trigger kicks off a snapshot pass. Passes are serialized; a request that
// arrives while one is running is rejected rather than queued.
func (h *SyncHandler) Trigger(ctx *gin.Context) {
	summary, err := h.Syncer.TryRun(ctx.Request.Context())

	if err != nil {
		if errors.Is(err, pdsync.ErrSyncInProgress) {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Sync completed", "counts": summary})
}
