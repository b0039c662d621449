package http

import (
	"database/sql"
	"net/http"
)

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	DB *sql.DB
}

// Check handles GET /api/health. It is the only unauthenticated GET.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"success": false,
			"error":   "database unreachable",
		})
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}
