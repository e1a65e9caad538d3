package auth

import (
	"net/http"

	"figaros/internal/utils"
)

type LogoutHandler struct{}

// ServeHTTP handles POST /auth/logout
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	utils.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
