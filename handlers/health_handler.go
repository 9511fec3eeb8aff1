package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diefthyntis/twoaut-auth-api/app"
	"github.com/diefthyntis/twoaut-auth-api/utils"
)

// HealthStatus is the response body for the health endpoints
type HealthStatus struct {
	Status string `json:"status"`
}

// HealthCheck reports process liveness
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, HealthStatus{Status: "ok"})
	}
}

// ReadinessCheck reports whether the service can reach its database
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.HealthCheck(r.Context()); err != nil {
				deps.Logger.Warn("readiness check failed", zap.Error(err))
				_ = utils.WriteJSON(w, http.StatusServiceUnavailable, HealthStatus{Status: "unavailable"})
				return
			}
		}
		_ = utils.WriteJSON(w, http.StatusOK, HealthStatus{Status: "ready"})
	}
}
