package auth

import (
	"database/sql"
	"net/http"

	log "github.com/sirupsen/logrus"

	"figaros/internal/middleware"
	"figaros/internal/utils"
)

type MeHandler struct {
	DB *sql.DB
}

type meUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// ServeHTTP handles GET /auth/me
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	var u meUser
	err := h.DB.QueryRowContext(r.Context(),
		"SELECT id, name, email, verified FROM users WHERE id = ?", session.UserID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Verified)
	if err == sql.ErrNoRows {
		utils.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	} else if err != nil {
		log.WithError(err).Error("me: lookup failed")
		utils.Error(w, http.StatusInternalServerError, "Error al obtener el usuario")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]meUser{"user": u})
}
