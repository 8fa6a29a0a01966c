package main

import (
	"context"
	"net/http"
	"time"
)

// healthHandler reports whether the store answers
func (rm *RouteManager) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := rm.dbManager.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"store":  rm.dbManager.Driver(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"store":  rm.dbManager.Driver(),
	})
}
