package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wconley/cratedig/internal/catalog"
	"github.com/wconley/cratedig/internal/store"
	"github.com/wconley/cratedig/internal/version"
)

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
		"commit":  version.Commit,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// writeFetchError maps ingestion failures to HTTP statuses: catalog
// outages to 502, rejected input to 422, everything else to 500.
func (r *Router) writeFetchError(w http.ResponseWriter, err error) {
	var unavailable *catalog.ErrUnavailable
	switch {
	case errors.As(err, &unavailable):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "catalog unavailable"})
	case errors.Is(err, store.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
