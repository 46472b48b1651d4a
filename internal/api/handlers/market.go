package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/optrisk/internal/contracts"
	"github.com/wonny/optrisk/internal/marketdata"
)

// MarketHandler exposes the server-held market data snapshot
type MarketHandler struct {
	snapshot *marketdata.Snapshot
}

// NewMarketHandler creates a new market handler; snapshot may be nil
func NewMarketHandler(snapshot *marketdata.Snapshot) *MarketHandler {
	return &MarketHandler{snapshot: snapshot}
}

// SnapshotResponse lists the installed snapshot
type SnapshotResponse struct {
	Version  int64                  `json:"version"`
	LoadedAt *time.Time             `json:"loaded_at,omitempty"`
	Count    int                    `json:"count"`
	Assets   []contracts.MarketData `json:"assets"`
}

// GetSnapshot returns every record in the current snapshot
// GET /api/market/snapshot
func (h *MarketHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshot == nil {
		respondError(w, http.StatusServiceUnavailable, KindUnavailable, "market data snapshot is not enabled (MARKET_DATA_SOURCE=request)")
		return
	}

	view := h.snapshot.View()
	records := view.Store.Records()

	resp := SnapshotResponse{
		Version: view.Version,
		Count:   len(records),
		Assets:  records,
	}
	if !view.LoadedAt.IsZero() {
		loadedAt := view.LoadedAt
		resp.LoadedAt = &loadedAt
	}

	respondJSON(w, http.StatusOK, resp)
}
