package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler reports process liveness and the active call count
func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":      "healthy",
		"service":     "campaign-agent",
		"activeCalls": a.manager.Count(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
