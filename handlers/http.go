package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecessbot/clients"
	"ecessbot/core/log"
)

// NewRouter serves the health check and the prometheus metrics
func NewRouter(discordClient clients.DiscordClient) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := `{"status":"ok","gateway":"ready"}`
		status := http.StatusOK
		if !discordClient.IsReady() {
			body = `{"status":"degraded","gateway":"not ready"}`
			status = http.StatusServiceUnavailable
		}
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			log.Error("❌ Failed to write health check response", "error", err)
		}
	}).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}
