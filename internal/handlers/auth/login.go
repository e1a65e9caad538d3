package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"figaros/internal/password"
	"figaros/internal/utils"
)

type LoginHandler struct {
	DB         *sql.DB
	JWTSecret  string
	JWTExpires time.Duration
	Validate   *validator.Validate
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ServeHTTP handles POST /auth/login
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.Validate.Struct(req); err != nil {
		utils.Error(w, http.StatusBadRequest, utils.FirstValidationMessage(err))
		return
	}

	var (
		id, name, passwordHash string
		verified               bool
	)
	err := h.DB.QueryRowContext(r.Context(),
		"SELECT id, name, password_hash, verified FROM users WHERE email = ?", req.Email,
	).Scan(&id, &name, &passwordHash, &verified)
	if err == sql.ErrNoRows {
		utils.Error(w, http.StatusNotFound, "Usuario no encontrado.")
		return
	} else if err != nil {
		log.WithError(err).Error("login: lookup failed")
		utils.Error(w, http.StatusInternalServerError, "Error al iniciar sesión")
		return
	}

	ok, err := password.Verify(req.Password, passwordHash)
	if err != nil || !ok {
		utils.Error(w, http.StatusUnauthorized, "Credenciales incorrectas.")
		return
	}
	if !verified {
		utils.Error(w, http.StatusForbidden, "Cuenta no verificada. Revisa tu correo o reenvía el enlace.")
		return
	}

	token, err := utils.GenerateSessionToken(utils.Session{UserID: id, Email: req.Email, Name: name}, h.JWTSecret, h.JWTExpires)
	if err != nil {
		log.WithError(err).Error("login: token signing failed")
		utils.Error(w, http.StatusInternalServerError, "Error al iniciar sesión")
		return
	}
	setSessionCookie(w, token)

	utils.JSON(w, http.StatusOK, map[string]userSummary{
		"user": {ID: id, Name: name, Email: req.Email},
	})
}
