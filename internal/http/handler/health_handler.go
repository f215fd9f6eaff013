package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/qes/quotation-api/internal/database"
	"github.com/qes/quotation-api/internal/datawarehouse"
	"github.com/qes/quotation-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthCheckTimeout = 5 * time.Second

// WarehouseChecker is the part of the data warehouse client used by readiness probes
type WarehouseChecker interface {
	HealthCheck(ctx context.Context) *datawarehouse.HealthStatus
}

// NumberingChecker reads the quotation number counter without advancing it
type NumberingChecker interface {
	Status(ctx context.Context, at time.Time) (*service.NumberingStatus, error)
}

type HealthHandler struct {
	db        *gorm.DB
	warehouse WarehouseChecker
	numbering NumberingChecker
	logger    *zap.Logger
}

// NewHealthHandler creates the probe handler. warehouse may be nil when the
// catalog is served from the local database; numbering may be nil in tests.
func NewHealthHandler(db *gorm.DB, warehouse WarehouseChecker, numbering NumberingChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, warehouse: warehouse, numbering: numbering, logger: logger}
}

// Live is the liveness probe
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Database reports database reachability with connection pool statistics
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	response := map[string]interface{}{
		"status":  "healthy",
		"service": "database",
	}
	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		response["stats"] = map[string]interface{}{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		}
	}
	respondJSON(w, http.StatusOK, response)
}

// Ready checks every dependency a quotation request may touch. A disabled
// warehouse does not count against readiness.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]interface{})
	allHealthy := true

	if err := database.HealthCheck(ctx, h.db); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
		allHealthy = false
	} else {
		checks["database"] = map[string]interface{}{"status": "healthy"}
	}

	if h.numbering != nil {
		status, err := h.numbering.Status(ctx, time.Now())
		if err != nil {
			h.logger.Error("Numbering counter check failed", zap.Error(err))
			checks["numbering"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["numbering"] = map[string]interface{}{
				"status":     "healthy",
				"prefix":     status.Prefix,
				"period":     status.Period,
				"lastIssued": status.LastIssued,
				"nextNumber": status.NextNumber,
			}
		}
	}

	if h.warehouse != nil {
		status := h.warehouse.HealthCheck(ctx)
		checks["datawarehouse"] = status
		if status.Status == "unhealthy" {
			allHealthy = false
		}
	}

	code, overall := http.StatusOK, "healthy"
	if !allHealthy {
		code, overall = http.StatusServiceUnavailable, "unhealthy"
	}
	respondJSON(w, code, map[string]interface{}{
		"status": overall,
		"checks": checks,
	})
}
