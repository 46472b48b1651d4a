package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/optrisk/internal/marketdata"
	"github.com/wonny/optrisk/pkg/database"
	"github.com/wonny/optrisk/pkg/redis"
)

// DatabaseChecker reports database health (pkg/database.DB)
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// HealthHandler reports service and dependency health
type HealthHandler struct {
	db       DatabaseChecker // nil = DB 미사용
	redis    *redis.Client
	snapshot *marketdata.Snapshot
	timeout  time.Duration
}

// NewHealthHandler creates a new health handler; every dependency may be nil
func NewHealthHandler(db DatabaseChecker, rc *redis.Client, snapshot *marketdata.Snapshot) *HealthHandler {
	return &HealthHandler{
		db:       db,
		redis:    rc,
		snapshot: snapshot,
		timeout:  2 * time.Second,
	}
}

// ComponentHealth is the state of one dependency
type ComponentHealth struct {
	Status  string `json:"status"` // ok, disabled, error
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status          string                     `json:"status"` // ok, degraded
	Service         string                     `json:"service"`
	Components      map[string]ComponentHealth `json:"components"`
	SnapshotVersion int64                      `json:"snapshot_version,omitempty"`
	SnapshotAssets  int                        `json:"snapshot_assets,omitempty"`
}

// Health returns service health status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:     "ok",
		Service:    "optrisk-api",
		Components: make(map[string]ComponentHealth, 2),
	}

	// Database
	if h.db == nil {
		resp.Components["database"] = ComponentHealth{Status: "disabled"}
	} else if st, err := h.db.HealthCheck(ctx); err != nil {
		resp.Components["database"] = ComponentHealth{Status: "error", Error: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.Components["database"] = ComponentHealth{Status: "ok", Latency: st.ResponseTime.String()}
	}

	// Redis
	if !h.redis.Enabled() {
		resp.Components["redis"] = ComponentHealth{Status: "disabled"}
	} else if err := h.redis.Ping(ctx); err != nil {
		resp.Components["redis"] = ComponentHealth{Status: "error", Error: err.Error()}
		resp.Status = "degraded"
	} else {
		resp.Components["redis"] = ComponentHealth{Status: "ok"}
	}

	if h.snapshot != nil {
		view := h.snapshot.View()
		resp.SnapshotVersion = view.Version
		resp.SnapshotAssets = view.Store.Len()
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}
