package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"figaros/internal/mailer"
	"figaros/internal/tokens"
	"figaros/internal/utils"
)

type ResendHandler struct {
	DB     *sql.DB
	Tokens *tokens.Service
	Mailer *mailer.Mailer
}

type ResendRequest struct {
	Email string `json:"email"`
}

// ServeHTTP handles POST /auth/resend
func (h *ResendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var (
		userID   string
		verified bool
	)
	err := h.DB.QueryRowContext(r.Context(), "SELECT id, verified FROM users WHERE email = ?", email).Scan(&userID, &verified)
	if err == sql.ErrNoRows {
		utils.Error(w, http.StatusNotFound, "Usuario no encontrado.")
		return
	} else if err != nil {
		log.WithError(err).Error("resend: lookup failed")
		utils.Error(w, http.StatusInternalServerError, "Error al reenviar el enlace")
		return
	}
	if verified {
		utils.Error(w, http.StatusBadRequest, "La cuenta ya está verificada.")
		return
	}

	token, err := h.Tokens.Issue(r.Context(), userID)
	if err != nil {
		log.WithError(err).Error("resend: token issue failed")
		utils.Error(w, http.StatusInternalServerError, "Error al reenviar el enlace")
		return
	}
	if err := h.Mailer.SendVerification(r.Context(), email, token); err != nil {
		log.WithError(err).Error("resend: mail failed")
		utils.Error(w, http.StatusInternalServerError, "No se pudo enviar el correo de verificación.")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": "Se envió un nuevo enlace de verificación.",
	})
}
