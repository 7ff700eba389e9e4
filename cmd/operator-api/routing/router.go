// Package routing wires the operator's HTTP surface (§6): one route per
// use case, plus the liveness/readiness/metrics probes.
package routing

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ore-pool-go/operator/cmd/operator-api/controllers"
	"github.com/ore-pool-go/operator/cmd/operator-api/middlewares"
)

const (
	Address       = "/address"
	Register      = "/register"
	Member        = "/member/{authority}"
	Challenge     = "/challenge/{authority}"
	Contribute    = "/contribute"
	Event         = "/event/{authority}"
	CommitBalance = "/commit-balance"
	Webhook       = "/webhook/mine-event"

	Liveness  = "/healthz"
	Readiness = "/readyz"
	Metrics   = "/metrics"
)

func NewRouter(pool *controllers.PoolController, health *controllers.HealthController) http.Handler {
	r := mux.NewRouter()

	r.Use(middlewares.ErrorMiddleware)
	r.Use(middlewares.CORSMiddleware)
	r.Use(health.AppMetrics().MetricsMiddleware)

	r.HandleFunc(Address, pool.GetAddress).Methods(http.MethodGet)
	r.HandleFunc(Register, pool.Register).Methods(http.MethodPost)
	r.HandleFunc(Member, pool.GetMember).Methods(http.MethodGet)
	r.HandleFunc(Challenge, pool.GetChallenge).Methods(http.MethodGet)
	r.HandleFunc(Contribute, pool.Contribute).Methods(http.MethodPost)
	r.HandleFunc(Event, pool.GetEvent).Methods(http.MethodGet)
	r.HandleFunc(CommitBalance, pool.CommitBalance).Methods(http.MethodPost)
	r.HandleFunc(Webhook, pool.HandleMineEvent).Methods(http.MethodPost)

	r.HandleFunc(Liveness, health.Liveness).Methods(http.MethodGet)
	r.HandleFunc(Readiness, health.Readiness).Methods(http.MethodGet)
	r.Handle(Metrics, health.Metrics()).Methods(http.MethodGet)

	return r
}
