package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthChecker provides health check endpoints for the HTTP transports.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a HealthChecker; the server starts ready.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthResponse is the JSON body of the health endpoints.
type HealthResponse struct {
	Status             string `json:"status"`
	Uptime             string `json:"uptime,omitempty"`
	ConfiguredClusters int    `json:"configured_clusters,omitempty"`
	LiveConnections    int    `json:"live_connections,omitempty"`
}

// LivenessHandler serves /healthz: the process is running.
func (h *HealthChecker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// ReadinessHandler serves /readyz: ready to dispatch tool calls.
// Cluster connections are lazy, so readiness reflects configuration and
// lifecycle state rather than remote reachability.
func (h *HealthChecker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := h.serverContext
		resp := HealthResponse{
			Status:             "ready",
			Uptime:             time.Since(h.startTime).Round(time.Second).String(),
			ConfiguredClusters: len(sc.Config().Clusters),
			LiveConnections:    sc.Registry().Len(),
		}
		status := http.StatusOK
		if !h.ready.Load() || sc.IsShutdown() {
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, status, resp)
	}
}

// RegisterHealthEndpoints attaches the health handlers to a mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.LivenessHandler())
	mux.HandleFunc("/readyz", h.ReadinessHandler())
}

func writeHealth(w http.ResponseWriter, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
