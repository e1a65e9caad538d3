package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"figaros/internal/mailer"
	"figaros/internal/password"
	"figaros/internal/tokens"
	"figaros/internal/utils"
)

type RegisterHandler struct {
	DB       *sql.DB
	Tokens   *tokens.Service
	Mailer   *mailer.Mailer
	Validate *validator.Validate
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ServeHTTP handles POST /auth/register
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.Validate.Struct(req); err != nil {
		utils.Error(w, http.StatusBadRequest, utils.FirstValidationMessage(err))
		return
	}

	ctx := r.Context()

	var existingID string
	err := h.DB.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ?", req.Email).Scan(&existingID)
	if err == nil {
		utils.Error(w, http.StatusConflict, "Ya existe una cuenta con ese correo.")
		return
	} else if err != sql.ErrNoRows {
		log.WithError(err).Error("register: lookup failed")
		utils.Error(w, http.StatusInternalServerError, "Error al registrarse")
		return
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		log.WithError(err).Error("register: hash failed")
		utils.Error(w, http.StatusInternalServerError, "Error al registrarse")
		return
	}

	userID := uuid.NewString()
	_, err = h.DB.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)",
		userID, req.Name, req.Email, hash,
	)
	if err != nil {
		// Two concurrent registrations can both pass the lookup; the unique
		// index on email settles it.
		if me, ok := err.(*mysql.MySQLError); ok && me.Number == 1062 {
			utils.Error(w, http.StatusConflict, "Ya existe una cuenta con ese correo.")
			return
		}
		log.WithError(err).Error("register: insert failed")
		utils.Error(w, http.StatusInternalServerError, "Error al registrarse")
		return
	}

	if err := h.issueAndMail(ctx, userID, req.Email); err != nil {
		log.WithError(err).Error("register: verification mail failed")
		utils.Error(w, http.StatusInternalServerError, "No se pudo enviar el correo de verificación.")
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]string{
		"message": "Usuario creado. Revisa tu email para verificar.",
	})
}

func (h *RegisterHandler) issueAndMail(ctx context.Context, userID, email string) error {
	token, err := h.Tokens.Issue(ctx, userID)
	if err != nil {
		return err
	}
	return h.Mailer.SendVerification(ctx, email, token)
}
