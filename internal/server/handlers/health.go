package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/zonesync/pkg/api"
)

// VersionSource reports the latest zone version; it doubles as a storage liveness check
type VersionSource interface {
	MaxVersion(ctx context.Context) (int64, error)
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger     *slog.Logger
	versions   VersionSource
	appVersion string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, versions VersionSource, appVersion string) *HealthHandler {
	return &HealthHandler{
		logger:     logger,
		versions:   versions,
		appVersion: appVersion,
	}
}

// Health обрабатывает GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{
		Status:  "ok",
		Version: h.appVersion,
	}
	status := http.StatusOK

	v, err := h.versions.MaxVersion(r.Context())
	if err != nil {
		h.logger.Error("Storage health check failed", slog.Any("error", err))
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	resp.ZoneVersion = v

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}
