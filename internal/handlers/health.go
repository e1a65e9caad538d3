package handlers

import (
	"net/http"

	"figaros/internal/utils"
)

// HealthCheck answers GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
