package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ore-pool-go/operator/pkg/infra/observability"
)

// HealthController exposes liveness/readiness probes and the Prometheus
// scrape endpoint, wiring Postgres and the chain RPC endpoint in as the
// two dependencies worth degrading on.
type HealthController struct {
	healthService *observability.HealthService
	appMetrics    *observability.ApplicationMetrics
}

func NewHealthController(db *sqlx.DB, chainPing func(ctx context.Context) error, version string) *HealthController {
	healthService := observability.NewHealthService(version)
	appMetrics := observability.NewApplicationMetrics()

	if db != nil {
		healthService.RegisterPostgresChecker(func(ctx context.Context) error {
			return db.PingContext(ctx)
		})
	}
	if chainPing != nil {
		healthService.RegisterChainChecker(chainPing)
	}

	return &HealthController{healthService: healthService, appMetrics: appMetrics}
}

func (hc *HealthController) AppMetrics() *observability.ApplicationMetrics {
	return hc.appMetrics
}

// Liveness answers GET /healthz: process is up, nothing more.
func (hc *HealthController) Liveness(w http.ResponseWriter, r *http.Request) {
	if hc.healthService.Liveness(r.Context()) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte("NOT OK"))
}

// Readiness answers GET /readyz: Postgres and the chain RPC both reachable.
func (hc *HealthController) Readiness(w http.ResponseWriter, r *http.Request) {
	result := hc.healthService.Check(r.Context())

	statusCode := http.StatusOK
	if result.Status == observability.HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(result)
}

// Metrics answers GET /metrics with the Prometheus exposition format.
func (hc *HealthController) Metrics() http.Handler {
	return promhttp.Handler()
}
