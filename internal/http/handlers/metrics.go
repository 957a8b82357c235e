package handlers

import (
	"net/http"
)

// ServeMetrics serves the Prometheus exposition for the app's own registry.
func (a *App) ServeMetrics(w http.ResponseWriter, r *http.Request) {
	if a.Metrics == nil {
		http.NotFound(w, r)
		return
	}
	a.Metrics.Handler().ServeHTTP(w, r)
}
